package groups

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
)

func order(id, origin, centre string, flow *string) *domain.Order {
	o, _ := domain.NewOrder(domain.Order{
		ID: id, OriginWarehouse: origin, DestinationCentre: centre, Flow: flow,
		WeightKg: 1, VolumeM3: 1, PalletCount: 1,
	})
	return &o
}

func TestGenerate_DisjointAndOrdered(t *testing.T) {
	cfg := RouteConfig{
		Routes: map[domain.RouteType][]domain.RouteTableEntry{
			domain.RouteNormal: {{Origins: []string{"CD1"}, Centres: []string{"CE1"}}},
			domain.RouteMultiCD: {{Origins: []string{"CD1"}, Centres: []string{"CE2"}}},
		},
	}

	orders := []*domain.Order{
		order("A", "CD1", "CE1", nil),
		order("B", "CD1", "CE2", nil),
		order("C", "CD1", "CE3", nil), // matches nothing
	}

	result := Generate(orders, cfg, ModeVCU, BudgetConfig{})
	require.Len(t, result, 2)
	assert.Equal(t, domain.RouteNormal, result[0].Config.RouteType)
	assert.Equal(t, domain.RouteMultiCD, result[1].Config.RouteType)

	seen := make(map[string]bool)
	for _, g := range result {
		for _, o := range g.Orders {
			assert.False(t, seen[o.ID], "order must appear in at most one group")
			seen[o.ID] = true
		}
	}
	assert.False(t, seen["C"])
}

func TestGenerate_FlowSplitting(t *testing.T) {
	crr := "CRR"
	inv := "INV"
	cfg := RouteConfig{
		UsaOC: true,
		Routes: map[domain.RouteType][]domain.RouteTableEntry{
			domain.RouteNormal: {{Origins: []string{"CD1"}, Centres: []string{"CE1"}}},
		},
	}

	orders := []*domain.Order{
		order("A", "CD1", "CE1", &crr),
		order("B", "CD1", "CE1", &inv),
		order("C", "CD1", "CE1", nil),
	}

	result := Generate(orders, cfg, ModeVCU, BudgetConfig{})
	require.Len(t, result, 3) // CRR, INV, no-flow
}

func TestAssignTimeBudgets_SmallGroupCountGetsBoost(t *testing.T) {
	groups := []Group{{Orders: make([]*domain.Order, 4)}}
	assignTimeBudgets(groups, BudgetConfig{TotalTimeout: 35 * time.Second})
	assert.Greater(t, groups[0].TimeBudget, minGroupBudget)
	// base 30s boosted 1.5x for <=5 groups to 45s, then 0.7x for 3-5 orders.
	assert.InDelta(t, float64(31500*time.Millisecond), float64(groups[0].TimeBudget), float64(time.Millisecond))
}

func TestPerGroupBudget_Bands(t *testing.T) {
	base := 10 * time.Second
	assert.Equal(t, 5*time.Second, perGroupBudget(base, 2))
	assert.Equal(t, base, perGroupBudget(base, 15))
	assert.Equal(t, 25*time.Second, perGroupBudget(base, 35))
}
