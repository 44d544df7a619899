package adherence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
	"truckload/internal/stacking"
)

func nestleCapacity() domain.TruckCapacity {
	return domain.TruckCapacity{WeightKg: 23000, VolumeM3: 70000, MaxPositions: 30, MaxPallets: 60, MinVCU: 0.0, HeightCm: 270}
}

func backhaulCapacity() domain.TruckCapacity {
	return domain.TruckCapacity{WeightKg: 20000, VolumeM3: 60000, MaxPositions: 25, MaxPallets: 50, MinVCU: 0.0, HeightCm: 220}
}

// nestleTruck builds a one-pallet truck (height 150cm, well under either
// capacity's interior height) whose weight alone drives a distinct VCUMax.
func nestleTruck(t *testing.T, id string, weightKg float64) *domain.Truck {
	tr := domain.NewTruck(id, domain.RouteNormal, domain.TruckPaquetera, nestleCapacity())
	tr.BackhaulAllowed = true
	o, err := domain.NewOrder(domain.Order{ID: id + "-ord", WeightKg: weightKg, VolumeM3: 100, PalletCount: 1, Counts: domain.StackCounts{Base: 1}})
	require.NoError(t, err)
	require.NoError(t, tr.AgregarPedidos([]*domain.Order{&o}))
	require.NoError(t, validateOnto(tr))
	return tr
}

func validateOnto(t *domain.Truck) error {
	res := stacking.Validate(t, stacking.DefaultConfig())
	t.LayoutInfo = &domain.LayoutInfo{AlturaValidada: res.Fits, Errors: res.Errors, Layout: res.Layout, FragmentosFallidos: res.FailedFragmentIDs}
	if res.Fits {
		t.PosTotal = res.Layout.UsedPositions()
	}
	return nil
}

func TestApply_ConvertsLowestVCUTrucksUntilTarget(t *testing.T) {
	trucks := []*domain.Truck{
		nestleTruck(t, "A", 1000),
		nestleTruck(t, "B", 2000),
		nestleTruck(t, "C", 3000),
		nestleTruck(t, "D", 4000),
	}

	converted := Apply(trucks, backhaulCapacity(), 0.5, stacking.DefaultConfig())
	assert.Equal(t, 2, converted)

	backhaulCount := 0
	for _, tr := range trucks {
		if tr.TruckType == domain.TruckBackhaul {
			backhaulCount++
		}
	}
	assert.Equal(t, 2, backhaulCount)

	for _, tr := range trucks {
		assert.True(t, tr.IsOpen(), "all originally assigned orders must still be assigned")
	}
}

func TestApply_SkipsTruckWhoseRouteForbidsBackhaul(t *testing.T) {
	allowed := nestleTruck(t, "A", 1000)
	forbidden := nestleTruck(t, "B", 2000)
	forbidden.BackhaulAllowed = false

	converted := Apply([]*domain.Truck{allowed, forbidden}, backhaulCapacity(), 1.0, stacking.DefaultConfig())
	assert.Equal(t, 1, converted)
	assert.Equal(t, domain.TruckBackhaul, allowed.TruckType)
	assert.Equal(t, domain.TruckPaquetera, forbidden.TruckType)
}

func TestApply_NoDeficitReturnsZero(t *testing.T) {
	trucks := []*domain.Truck{nestleTruck(t, "A", 1000)}
	converted := Apply(trucks, backhaulCapacity(), 0, stacking.DefaultConfig())
	assert.Equal(t, 0, converted)
}
