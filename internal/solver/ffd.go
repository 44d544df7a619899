package solver

import (
	"sort"

	"truckload/internal/domain"
)

// compositeKey is the First-Fit-Decreasing sort key: the larger of the
// order's weight or volume ratio against the truck capacity.
func compositeKey(o *domain.Order, capacity domain.TruckCapacity) float64 {
	wRatio := 0.0
	if capacity.WeightKg > 0 {
		wRatio = o.WeightKg / capacity.WeightKg
	}
	vRatio := 0.0
	if capacity.VolumeM3 > 0 {
		vRatio = o.VolumeM3 / capacity.VolumeM3
	}
	if wRatio > vRatio {
		return wRatio
	}
	return vRatio
}

// ffdBin is a side-effect-free running total used only to estimate the
// truck count; unlike domain.Truck it never mutates the orders it "holds".
type ffdBin struct {
	weight, volume, pallets float64
	counts                  domain.StackCounts
}

func (b *ffdBin) fits(o *domain.Order, capacity domain.TruckCapacity) bool {
	newWeight := b.weight + o.WeightKg
	newVolume := b.volume + o.VolumeM3
	newPallets := b.pallets + o.PalletsCapacidad()
	newCounts := b.counts.Add(o.Counts)
	if newWeight > capacity.WeightKg+1e-6 || newVolume > capacity.VolumeM3+1e-6 {
		return false
	}
	if newPallets > capacity.MaxPallets+1e-6 {
		return false
	}
	if newCounts.EstimatedPositions() > float64(capacity.MaxPositions)+1e-6 {
		return false
	}
	return true
}

func (b *ffdBin) add(o *domain.Order) {
	b.weight += o.WeightKg
	b.volume += o.VolumeM3
	b.pallets += o.PalletsCapacidad()
	b.counts = b.counts.Add(o.Counts)
}

// ffdEstimate runs First-Fit-Decreasing bin packing to estimate how many
// trucks this order set needs. It never mutates the input orders.
func ffdEstimate(orders []*domain.Order, capacity domain.TruckCapacity) int {
	if len(orders) == 0 {
		return 0
	}
	sorted := make([]*domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compositeKey(sorted[i], capacity) > compositeKey(sorted[j], capacity)
	})

	bins := make([]*ffdBin, 0)
	for _, o := range sorted {
		placed := false
		for _, bin := range bins {
			if bin.fits(o, capacity) {
				bin.add(o)
				placed = true
				break
			}
		}
		if !placed {
			bin := &ffdBin{}
			bin.add(o)
			bins = append(bins, bin)
		}
	}
	return len(bins)
}

// EstimateTruckCount bounds the model's truck-slot count:
// min(len(orders), FFD_estimate + slack, maxTrucks). maxTrucks <= 0 falls
// back to DefaultMaxTrucks.
func EstimateTruckCount(orders []*domain.Order, capacity domain.TruckCapacity, slack, maxTrucks int) int {
	if len(orders) == 0 {
		return 0
	}
	if maxTrucks <= 0 {
		maxTrucks = DefaultMaxTrucks
	}
	bound := ffdEstimate(orders, capacity) + slack
	if bound > len(orders) {
		bound = len(orders)
	}
	if bound > maxTrucks {
		bound = maxTrucks
	}
	if bound < 1 {
		bound = 1
	}
	return bound
}
