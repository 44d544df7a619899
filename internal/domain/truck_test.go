package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCapacity() TruckCapacity {
	return TruckCapacity{
		WeightKg:       23000,
		VolumeM3:       70000,
		MaxPositions:   30,
		MaxPallets:     60,
		VerticalLevels: 2,
		MinVCU:         0.2,
		HeightCm:       270,
	}
}

// A single order that fits paquetera yields one truck.
func TestTruck_AgregarPedidos_SingleOrderFits(t *testing.T) {
	order, err := NewOrder(Order{
		ID: "ORD1", WeightKg: 1000, VolumeM3: 10000, PalletCount: 2,
		Counts: StackCounts{Base: 2},
	})
	require.NoError(t, err)

	truck := NewTruck("TR1", RouteNormal, TruckPaquetera, testCapacity())
	require.NoError(t, truck.AgregarPedidos([]*Order{&order}))

	assert.InDelta(t, 1000.0/23000.0, truck.VCUPeso(), 1e-6)
	assert.InDelta(t, 10000.0/70000.0, truck.VCUVol(), 1e-6)
	assert.InDelta(t, 0.142857, truck.VCUMax(), 1e-5)
	assert.Equal(t, "TR1", order.AssignedTruckID)
}

func TestTruck_AgregarPedidos_RejectsOverweight(t *testing.T) {
	order, err := NewOrder(Order{ID: "ORD2", WeightKg: 30000, VolumeM3: 1, PalletCount: 1})
	require.NoError(t, err)

	truck := NewTruck("TR2", RouteNormal, TruckPaquetera, testCapacity())
	err = truck.AgregarPedidos([]*Order{&order})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWeightExceeded)
	assert.False(t, order.IsAssigned())
}

func TestTruck_AgregarPedidos_AtomicRejectsWholeBatch(t *testing.T) {
	ok, err := NewOrder(Order{ID: "A", WeightKg: 1000, VolumeM3: 1, PalletCount: 1})
	require.NoError(t, err)
	tooHeavy, err := NewOrder(Order{ID: "B", WeightKg: 30000, VolumeM3: 1, PalletCount: 1})
	require.NoError(t, err)

	truck := NewTruck("TR3", RouteNormal, TruckPaquetera, testCapacity())
	err = truck.AgregarPedidos([]*Order{&ok, &tooHeavy})
	require.Error(t, err)
	assert.False(t, ok.IsAssigned(), "whole batch must be rejected together")
	assert.Empty(t, truck.Orders)
}

func TestTruck_RemoveOrders(t *testing.T) {
	a, _ := NewOrder(Order{ID: "A", WeightKg: 100, VolumeM3: 1, PalletCount: 1})
	b, _ := NewOrder(Order{ID: "B", WeightKg: 100, VolumeM3: 1, PalletCount: 1})

	truck := NewTruck("TR4", RouteNormal, TruckPaquetera, testCapacity())
	require.NoError(t, truck.AgregarPedidos([]*Order{&a, &b}))

	removed := truck.RemoveOrders(map[string]bool{"A": true})
	require.Len(t, removed, 1)
	assert.Equal(t, "A", removed[0].ID)
	assert.False(t, removed[0].IsAssigned())
	assert.Len(t, truck.Orders, 1)
	assert.Equal(t, "B", truck.Orders[0].ID)
}

func TestStackCounts_EstimatedPositions(t *testing.T) {
	// one base + one superior stack into a single position.
	c := StackCounts{Base: 1, Superior: 1}
	assert.InDelta(t, 1, c.EstimatedPositions(), 1e-9)

	// two si_mismo units pair into one position.
	c2 := StackCounts{SiMismo: 2}
	assert.InDelta(t, 1, c2.EstimatedPositions(), 1e-9)

	// an odd si_mismo unit needs its own position.
	c3 := StackCounts{SiMismo: 3}
	assert.InDelta(t, 2, c3.EstimatedPositions(), 1e-9)
}
