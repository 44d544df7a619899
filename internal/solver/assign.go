package solver

import (
	"sort"

	"truckload/internal/domain"
)

// bundle groups orders that must share a truck (purchase-order grouping)
// into one unit for the constructive assignment pass.
type bundle struct {
	orders  []*domain.Order
	weight  float64
	volume  float64
	pallets float64
	counts  domain.StackCounts
}

func (b *bundle) key(capacity domain.TruckCapacity) float64 {
	wRatio, vRatio := 0.0, 0.0
	if capacity.WeightKg > 0 {
		wRatio = b.weight / capacity.WeightKg
	}
	if capacity.VolumeM3 > 0 {
		vRatio = b.volume / capacity.VolumeM3
	}
	if wRatio > vRatio {
		return wRatio
	}
	return vRatio
}

func buildBundles(orders []*domain.Order, groupByPO bool) []*bundle {
	bundles := make([]*bundle, 0, len(orders))
	if !groupByPO {
		for _, o := range orders {
			bundles = append(bundles, newBundle([]*domain.Order{o}))
		}
		return bundles
	}

	byPO := make(map[string][]*domain.Order)
	var singles []*domain.Order
	for _, o := range orders {
		if o.PurchaseOrderID == "" {
			singles = append(singles, o)
			continue
		}
		byPO[o.PurchaseOrderID] = append(byPO[o.PurchaseOrderID], o)
	}
	for _, os := range byPO {
		bundles = append(bundles, newBundle(os))
	}
	for _, o := range singles {
		bundles = append(bundles, newBundle([]*domain.Order{o}))
	}
	return bundles
}

func newBundle(orders []*domain.Order) *bundle {
	b := &bundle{orders: orders}
	for _, o := range orders {
		b.weight += o.WeightKg
		b.volume += o.VolumeM3
		b.pallets += o.PalletsCapacidad()
		b.counts = b.counts.Add(o.Counts)
	}
	return b
}

// fitsCapacity reports whether bundle b fits the raw physical limits of
// capacity, ignoring truck-count/per-centre/PO caps.
func (b *bundle) fitsCapacity(capacity domain.TruckCapacity) bool {
	if b.weight > capacity.WeightKg+1e-6 {
		return false
	}
	if b.volume > capacity.VolumeM3+1e-6 {
		return false
	}
	if b.pallets > capacity.MaxPallets+1e-6 {
		return false
	}
	if b.counts.EstimatedPositions() > float64(capacity.MaxPositions)+1e-6 {
		return false
	}
	return true
}

// openTruck is the constructive-solver's running state for one truck slot.
type openTruck struct {
	weight, volume, pallets float64
	counts                  domain.StackCounts
	ordersByCentre          map[string]int
	bundles                 []*bundle
}

func newOpenTruck() *openTruck {
	return &openTruck{ordersByCentre: make(map[string]int)}
}

func (t *openTruck) orderCount() int {
	n := 0
	for _, b := range t.bundles {
		n += len(b.orders)
	}
	return n
}

func (t *openTruck) fits(b *bundle, m Model) bool {
	if m.MaxOrdersPerTruck > 0 && t.orderCount()+len(b.orders) > m.MaxOrdersPerTruck {
		return false
	}
	if m.MaxOrdersPerCentre > 0 {
		perCentre := make(map[string]int)
		for k, v := range t.ordersByCentre {
			perCentre[k] = v
		}
		for _, o := range b.orders {
			perCentre[o.DestinationCentre]++
			if perCentre[o.DestinationCentre] > m.MaxOrdersPerCentre {
				return false
			}
		}
	}
	newWeight := t.weight + b.weight
	newVolume := t.volume + b.volume
	newPallets := t.pallets + b.pallets
	newCounts := t.counts.Add(b.counts)
	if newWeight > m.Capacity.WeightKg+1e-6 || newVolume > m.Capacity.VolumeM3+1e-6 {
		return false
	}
	if newPallets > m.Capacity.MaxPallets+1e-6 {
		return false
	}
	if newCounts.EstimatedPositions() > float64(m.Capacity.MaxPositions)+1e-6 {
		return false
	}
	return true
}

func (t *openTruck) add(b *bundle) {
	t.weight += b.weight
	t.volume += b.volume
	t.pallets += b.pallets
	t.counts = t.counts.Add(b.counts)
	t.bundles = append(t.bundles, b)
	for _, o := range b.orders {
		t.ordersByCentre[o.DestinationCentre]++
	}
}

func (t *openTruck) vcuMax(capacity domain.TruckCapacity) float64 {
	vol, peso := 0.0, 0.0
	if capacity.VolumeM3 > 0 {
		vol = t.volume / capacity.VolumeM3
	}
	if capacity.WeightKg > 0 {
		peso = t.weight / capacity.WeightKg
	}
	if vol > peso {
		return vol
	}
	return peso
}

func (t *openTruck) orderIndices(index map[*domain.Order]int) []int {
	out := make([]int, 0, t.orderCount())
	for _, b := range t.bundles {
		for _, o := range b.orders {
			out = append(out, index[o])
		}
	}
	return out
}

// assign runs the constructive First-Fit-Decreasing placement over the
// model: PO-grouped bundles, sorted by composite VCU key, filled
// truck-by-truck up to the model's truck-slot bound. allowOverflow lets the
// bin-packing driver keep opening trucks past NTrucks, since every
// order must be placed there, unlike the VCU driver which
// treats NTrucks as a hard ceiling on the search.
func assign(m Model, allowOverflow bool) ([]*openTruck, []*domain.Order) {
	orders := make([]*domain.Order, len(m.Orders))
	index := make(map[*domain.Order]int, len(m.Orders))
	for i, a := range m.Orders {
		orders[i] = a.Order
		index[a.Order] = i
	}

	bundles := buildBundles(orders, len(m.SamePOGroups) > 0)

	feasible := make([]*bundle, 0, len(bundles))
	var excluded []*domain.Order
	for _, b := range bundles {
		if b.fitsCapacity(m.Capacity) {
			feasible = append(feasible, b)
		} else {
			excluded = append(excluded, b.orders...)
		}
	}

	sort.SliceStable(feasible, func(i, j int) bool {
		return feasible[i].key(m.Capacity) > feasible[j].key(m.Capacity)
	})

	trucks := make([]*openTruck, 0)
	for _, b := range feasible {
		placed := false
		for _, t := range trucks {
			if t.fits(b, m) {
				t.add(b)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(trucks) >= m.NTrucks && !allowOverflow {
			excluded = append(excluded, b.orders...)
			continue
		}
		nt := newOpenTruck()
		if nt.fits(b, m) {
			nt.add(b)
			trucks = append(trucks, nt)
		} else {
			excluded = append(excluded, b.orders...)
		}
	}

	return trucks, excluded
}
