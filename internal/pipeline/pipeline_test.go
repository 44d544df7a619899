package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/stacking"
	"truckload/internal/truckselect"
)

func testCapacity(weight, volume float64, positions int, pallets float64, minVCU float64) domain.TruckCapacity {
	return domain.TruckCapacity{
		WeightKg:       weight,
		VolumeM3:       volume,
		MaxPositions:   positions,
		MaxPallets:     pallets,
		VerticalLevels: 2,
		MinVCU:         minVCU,
		HeightCm:       270,
	}
}

func testOrder(id, origin, centre string, weight, volume, pallets float64) *domain.Order {
	o, err := domain.NewOrder(domain.Order{
		ID:                id,
		OriginWarehouse:   origin,
		DestinationCentre: centre,
		WeightKg:          weight,
		VolumeM3:          volume,
		PalletCount:       pallets,
		Counts:            domain.StackCounts{Base: pallets},
	})
	if err != nil {
		panic(err)
	}
	return &o
}

// testDeps builds a minimal single-route client configuration: one "normal"
// entry from CD1 to CE1, paquetera and rampla_directa allowed.
func testDeps() Deps {
	routes := groups.RouteConfig{
		Routes: map[domain.RouteType][]domain.RouteTableEntry{
			domain.RouteNormal: {
				{
					Origins:           []string{"CD1"},
					Centres:           []string{"CE1"},
					AllowedTruckTypes: []domain.TruckType{domain.TruckPaquetera, domain.TruckRamplaDirecta},
				},
			},
		},
		BinpackingRouteTypes: []domain.RouteType{domain.RouteNormal},
	}

	return Deps{
		Client: "cencosud",
		Routes: routes,
		Capacities: map[domain.TruckType]domain.TruckCapacity{
			domain.TruckPaquetera:     testCapacity(20000, 70, 30, 30, 0.1),
			domain.TruckRamplaDirecta: testCapacity(15000, 50, 24, 24, 0.1),
			domain.TruckBackhaul:      testCapacity(18000, 60, 25, 25, 0.0),
		},
		StackingConfig: stacking.DefaultConfig(),
		Budget:         groups.BudgetConfig{TotalTimeout: 20 * time.Second, MaxPerGroup: 10 * time.Second},
		Selector:       truckselect.DefaultSelector{},
		ValidarAltura:  true,
		MaxOrdenes:     40,
		TotalTimeout:   20 * time.Second,
	}
}

func manyOrders(n int) []*domain.Order {
	orders := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, testOrder(fmt.Sprintf("O%d", i), "CD1", "CE1", 500, 3, 1))
	}
	return orders
}

func TestRunVCU_PlacesOrdersAboveFloor(t *testing.T) {
	orders := manyOrders(20)
	res := RunVCU(context.Background(), orders, testDeps())

	require.NotEmpty(t, res.Trucks)
	placed := 0
	for _, tr := range res.Trucks {
		placed += len(tr.Orders)
		assert.True(t, tr.MeetsMinVCU())
	}
	assert.Equal(t, len(orders), placed+len(res.NotIncluded))
}

func TestRunVCU_UnreachableRouteLeavesEverythingUnincluded(t *testing.T) {
	orders := []*domain.Order{testOrder("A", "CD-UNKNOWN", "CE-UNKNOWN", 100, 1, 1)}
	res := RunVCU(context.Background(), orders, testDeps())

	assert.Empty(t, res.Trucks)
	require.Len(t, res.NotIncluded, 1)
	assert.Equal(t, "A", res.NotIncluded[0].ID)
}

func TestRunBinPacking_PlacesEveryOrder(t *testing.T) {
	orders := manyOrders(31)
	res := RunBinPacking(context.Background(), orders, testDeps())

	assert.Empty(t, res.NotIncluded)
	placed := 0
	seen := make(map[string]bool)
	for _, tr := range res.Trucks {
		placed += len(tr.Orders)
		for _, o := range tr.Orders {
			assert.False(t, seen[o.ID], "order %s placed twice", o.ID)
			seen[o.ID] = true
		}
	}
	assert.Equal(t, len(orders), placed)
}

func TestSplitBackhaulOnly_HoldsBackBackhaulOnlyRoutes(t *testing.T) {
	routes := groups.RouteConfig{
		Routes: map[domain.RouteType][]domain.RouteTableEntry{
			domain.RouteNormal: {
				{
					Origins:           []string{"CD1"},
					Centres:           []string{"CE1"},
					AllowedTruckTypes: []domain.TruckType{domain.TruckPaquetera, domain.TruckBackhaul},
				},
			},
			domain.RouteBackhaulOnly: {
				{
					Origins:           []string{"CD1"},
					Centres:           []string{"CE9"},
					AllowedTruckTypes: []domain.TruckType{domain.TruckBackhaul},
				},
			},
		},
	}

	mixed := testOrder("A", "CD1", "CE1", 100, 1, 1)
	bhOnly := testOrder("B", "CD1", "CE9", 100, 1, 1)

	eligible, heldBack := splitBackhaulOnly([]*domain.Order{mixed, bhOnly}, routes)
	require.Len(t, eligible, 1)
	assert.Equal(t, "A", eligible[0].ID)
	require.Len(t, heldBack, 1)
	assert.Equal(t, "B", heldBack[0].ID)
}

func TestRunBinPacking_NoFloorEnforced(t *testing.T) {
	// A single tiny order would fail VCU mode's floor but bin-packing has
	// none: it should still be placed.
	orders := []*domain.Order{testOrder("A", "CD1", "CE1", 10, 1, 1)}
	res := RunBinPacking(context.Background(), orders, testDeps())

	assert.Empty(t, res.NotIncluded)
	require.Len(t, res.Trucks, 1)
	assert.Len(t, res.Trucks[0].Orders, 1)
}
