package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
	"truckload/internal/stacking"
)

func capacityForTest(heightCm float64) domain.TruckCapacity {
	return domain.TruckCapacity{
		WeightKg:     23000,
		VolumeM3:     70000,
		MaxPositions: 30,
		MaxPallets:   60,
		MinVCU:       0.0,
		HeightCm:     heightCm,
	}
}

func legacyOrder(id string, pallets float64) *domain.Order {
	o, err := domain.NewOrder(domain.Order{
		ID: id, WeightKg: 100, VolumeM3: 100, PalletCount: pallets,
		Counts: domain.StackCounts{Base: pallets},
	})
	if err != nil {
		panic(err)
	}
	return &o
}

func TestValidateAll_MarksLayoutInfo(t *testing.T) {
	truck := domain.NewTruck("t1", domain.RouteNormal, domain.TruckPaquetera, capacityForTest(270))
	require.NoError(t, truck.AgregarPedidos([]*domain.Order{legacyOrder("A", 1)}))

	err := ValidateAll(context.Background(), []*domain.Truck{truck}, stacking.DefaultConfig(), 0)
	require.NoError(t, err)
	require.NotNil(t, truck.LayoutInfo)
	assert.True(t, truck.LayoutInfo.AlturaValidada)
}

func TestAdjust_RemovesOversizedOrderAndKeepsRest(t *testing.T) {
	// One oversized-height order (rejected) plus one that fits: a 160cm
	// truck holds the 1-pallet legacy order, but the 2-pallet order is too
	// tall for it and fails height validation.
	truck := domain.NewTruck("t1", domain.RouteNormal, domain.TruckPaquetera, capacityForTest(160))
	require.NoError(t, truck.AgregarPedidos([]*domain.Order{legacyOrder("TALL", 2), legacyOrder("OK", 1)}))

	require.NoError(t, ValidateAll(context.Background(), []*domain.Truck{truck}, stacking.DefaultConfig(), 0))
	require.False(t, truck.LayoutInfo.AlturaValidada)

	kept, removed := adjust([]*domain.Truck{truck}, stacking.DefaultConfig(), true)
	require.Len(t, removed, 1)
	assert.Equal(t, "TALL", removed[0].ID)
	require.Len(t, kept, 1)
	assert.True(t, kept[0].LayoutInfo.AlturaValidada)
}

func TestRun_DisarmsTruckWithNoFeasibleResidue(t *testing.T) {
	truck := domain.NewTruck("t1", domain.RouteNormal, domain.TruckPaquetera, capacityForTest(160))
	require.NoError(t, truck.AgregarPedidos([]*domain.Order{legacyOrder("TALL", 2)}))

	final, notIncluded := Run(context.Background(), []*domain.Truck{truck}, Options{
		StackingConfig: stacking.DefaultConfig(),
		BinPacking:     true,
	})
	assert.Empty(t, final)
	require.Len(t, notIncluded, 1)
	assert.Equal(t, "TALL", notIncluded[0].ID)
}
