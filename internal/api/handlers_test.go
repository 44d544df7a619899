package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/config"
	"truckload/internal/domain"
)

func TestSemaphore_AcquireReleaseRoundTrip(t *testing.T) {
	sem := &Semaphore{slots: make(chan struct{}, 1)}
	require.True(t, sem.acquire(time.Second))
	sem.release()
	require.True(t, sem.acquire(time.Second))
	sem.release()
}

func TestSemaphore_SaturatedAcquireTimesOut(t *testing.T) {
	sem := &Semaphore{slots: make(chan struct{}, 1)}
	require.True(t, sem.acquire(time.Second))
	defer sem.release()

	assert.False(t, sem.acquire(10*time.Millisecond))
}

func TestApplyVCUOverride_OnlyTouchesNamedTruckType(t *testing.T) {
	cfg := config.ClientConfig{
		TruckCapacities: map[domain.TruckType]domain.TruckCapacity{
			domain.TruckPaquetera: {MinVCU: 0.2},
			domain.TruckBackhaul:  {MinVCU: 0.0},
		},
	}

	applyVCUOverride(&cfg, domain.TruckPaquetera, 0.5)

	assert.Equal(t, 0.5, cfg.TruckCapacities[domain.TruckPaquetera].MinVCU)
	assert.Equal(t, 0.0, cfg.TruckCapacities[domain.TruckBackhaul].MinVCU)
}

func TestClonePedidos_ResetsAssignmentAndCopiesPointers(t *testing.T) {
	original, err := domain.NewOrder(domain.Order{ID: "A", Counts: domain.StackCounts{}})
	require.NoError(t, err)
	original.AssignedTruckID = "T1"
	orders := []*domain.Order{&original}

	cloned := clonePedidos(orders)

	require.Len(t, cloned, 1)
	assert.Empty(t, cloned[0].AssignedTruckID)
	assert.Equal(t, "T1", orders[0].AssignedTruckID, "original must be untouched")
	assert.NotSame(t, orders[0], cloned[0])
}
