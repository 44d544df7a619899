package solver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
)

func testCapacity() domain.TruckCapacity {
	return domain.TruckCapacity{
		WeightKg:     10000,
		VolumeM3:     70,
		MaxPositions: 30,
		MaxPallets:   30,
		MinVCU:       0.1,
	}
}

func testOrder(id string, weight, volume, pallets float64) *domain.Order {
	o, err := domain.NewOrder(domain.Order{
		ID: id, WeightKg: weight, VolumeM3: volume, PalletCount: pallets,
		Counts: domain.StackCounts{Base: pallets},
	})
	if err != nil {
		panic(err)
	}
	return &o
}

func sequentialID(prefix string) func(int) string {
	return func(i int) string { return fmt.Sprintf("%s-%d", prefix, i) }
}

func TestVCUDriver_DropsTrucksBelowMinVCU(t *testing.T) {
	cap := testCapacity()
	cap.MinVCU = 0.9 // unreachable with one tiny order
	orders := []*domain.Order{testOrder("A", 10, 1, 1)}

	d := VCUDriver{}
	_, trucks, unplaced, err := d.Solve(orders, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)
	assert.Empty(t, trucks)
	require.Len(t, unplaced, 1)
	assert.Equal(t, "A", unplaced[0].ID)
}

func TestVCUDriver_KeepsTruckMeetingMinVCU(t *testing.T) {
	cap := testCapacity()
	orders := []*domain.Order{testOrder("A", 9000, 60, 10)}

	d := VCUDriver{}
	_, trucks, unplaced, err := d.Solve(orders, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)
	require.Len(t, trucks, 1)
	assert.Empty(t, unplaced)
	assert.True(t, trucks[0].MeetsMinVCU())
}

func TestBinPackDriver_PlacesEveryOrder(t *testing.T) {
	cap := testCapacity()
	orders := make([]*domain.Order, 0, 31)
	for i := 0; i < 31; i++ {
		orders = append(orders, testOrder(fmt.Sprintf("O%d", i), 500, 3, 1))
	}

	d := BinPackDriver{}
	trucks, excluded, err := d.Solve(orders, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)
	assert.Empty(t, excluded)

	placed := 0
	seen := make(map[string]bool)
	for _, tr := range trucks {
		placed += len(tr.Orders)
		for _, o := range tr.Orders {
			assert.False(t, seen[o.ID])
			seen[o.ID] = true
		}
	}
	assert.Equal(t, 31, placed)
}

func TestBinPackDriver_ExcludesOversizedOrder(t *testing.T) {
	cap := testCapacity()
	orders := []*domain.Order{testOrder("A", 99999, 1, 1), testOrder("B", 100, 1, 1)}

	d := BinPackDriver{}
	trucks, excluded, err := d.Solve(orders, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, "A", excluded[0].ID)
	require.Len(t, trucks, 1)
	assert.Equal(t, "B", trucks[0].Orders[0].ID)
}

func TestSamePOGroups_PairsSharedPurchaseOrders(t *testing.T) {
	a, _ := domain.NewOrder(domain.Order{ID: "A", PurchaseOrderID: "PO1", PalletCount: 1})
	b, _ := domain.NewOrder(domain.Order{ID: "B", PurchaseOrderID: "PO1", PalletCount: 1})
	c, _ := domain.NewOrder(domain.Order{ID: "C", PalletCount: 1})

	pairs := samePOGroups([]*domain.Order{&a, &b, &c})
	require.Len(t, pairs, 1)
	assert.Equal(t, [2]int{0, 1}, pairs[0])
}

func TestBinPackDriver_KeepsPOGroupTogether(t *testing.T) {
	cap := testCapacity()
	a := testOrder("A", 5000, 30, 1)
	a.PurchaseOrderID = "PO1"
	b := testOrder("B", 5000, 30, 1)
	b.PurchaseOrderID = "PO1"
	filler := testOrder("C", 100, 1, 1)

	d := BinPackDriver{AgruparPorPO: true}
	trucks, _, err := d.Solve([]*domain.Order{a, b, filler}, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)

	var truckOf = make(map[string]string)
	for _, tr := range trucks {
		for _, o := range tr.Orders {
			truckOf[o.ID] = tr.ID
		}
	}
	assert.Equal(t, truckOf["A"], truckOf["B"])
}

func TestBinPackDriver_SplitsPOWhenGroupingOff(t *testing.T) {
	cap := testCapacity()
	// Together the pair exceeds the truck; without PO grouping each order
	// may ride alone.
	a := testOrder("A", 6000, 40, 1)
	a.PurchaseOrderID = "PO1"
	b := testOrder("B", 6000, 40, 1)
	b.PurchaseOrderID = "PO1"

	d := BinPackDriver{}
	trucks, excluded, err := d.Solve([]*domain.Order{a, b}, cap, domain.RouteNormal, domain.TruckPaquetera, sequentialID("t"))
	require.NoError(t, err)
	assert.Empty(t, excluded)
	assert.Len(t, trucks, 2)
}

func TestEstimateTruckCount_Bounds(t *testing.T) {
	cap := testCapacity()
	orders := []*domain.Order{testOrder("A", 1, 1, 1)}
	assert.Equal(t, 1, EstimateTruckCount(orders, cap, 1, 0))
	assert.Equal(t, 0, EstimateTruckCount(nil, cap, 1, 0))
	assert.Equal(t, 1, EstimateTruckCount(orders, cap, 5, 1))
}
