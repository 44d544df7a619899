// Package validation implements the validation cycle: drive the stacking
// validator across all trucks in parallel, remove offending orders when a
// truck fails, and hand the residue back for re-optimisation.
package validation

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"truckload/internal/domain"
	"truckload/internal/obs"
	"truckload/internal/stacking"
)

// defaultValidationWorkers bounds the validation worker pool when no
// override (GROUP_MAX_WORKERS) is configured.
const defaultValidationWorkers = 8

// maxAdjustIterations is adjust()'s per-truck retry ceiling.
const maxAdjustIterations = 3

// maxRecoveryRounds bounds how many regenerate-and-resolve rounds recover()
// runs before giving up on the remaining residue.
const maxRecoveryRounds = 3

// Options configures one run of the cycle.
type Options struct {
	StackingConfig stacking.Config
	BinPacking     bool // relaxes the min-VCU floor to "truck non-empty"
	MaxWorkers     int  // validation pool size; <= 0 means the default of 8

	// Regenerate rebuilds trucks from the removed pool. It is supplied by
	// the pipeline, which alone knows the nestlé-allowed/backhaul-allowed
	// phase ordering; the cycle only owns the retry-loop mechanics. It
	// returns newly built trucks plus any orders it still could not place.
	Regenerate func(ctx context.Context, orders []*domain.Order) (trucks []*domain.Truck, unplaced []*domain.Order)
}

// ValidateAll runs the stacking validator over every truck concurrently
// across a bounded worker pool and writes the result into each truck's
// LayoutInfo. workers <= 0 means the default of 8.
func ValidateAll(ctx context.Context, trucks []*domain.Truck, cfg stacking.Config, workers int) error {
	if workers <= 0 {
		workers = defaultValidationWorkers
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, t := range trucks {
		t := t
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res := stacking.Validate(t, cfg)
			t.LayoutInfo = &domain.LayoutInfo{
				AlturaValidada:     res.Fits,
				Errors:             res.Errors,
				Layout:             res.Layout,
				FragmentosFallidos: res.FailedFragmentIDs,
			}
			if res.Fits {
				t.PosTotal = res.Layout.UsedPositions()
			}
			return nil
		})
	}
	return g.Wait()
}

// adjust: for each invalid truck, pick the
// smallest subset of orders whose fragment count matches the failure
// target, remove it, and re-validate, up to maxAdjustIterations times. A
// truck still invalid after that is disarmed: every order returns to the
// removed pool.
func adjust(trucks []*domain.Truck, cfg stacking.Config, binPacking bool) (kept []*domain.Truck, removed []*domain.Order) {
	for _, t := range trucks {
		if t.LayoutInfo == nil || t.LayoutInfo.AlturaValidada {
			kept = append(kept, t)
			continue
		}

		for iter := 0; iter < maxAdjustIterations; iter++ {
			target := len(t.LayoutInfo.FragmentosFallidos)
			subset := pickRemovalSubset(t, target, binPacking)
			if len(subset) == 0 {
				break
			}
			ids := make(map[string]bool, len(subset))
			for _, o := range subset {
				ids[o.ID] = true
			}
			removed = append(removed, t.RemoveOrders(ids)...)

			if !t.IsOpen() {
				break
			}
			res := stacking.Validate(t, cfg)
			t.LayoutInfo = &domain.LayoutInfo{
				AlturaValidada:     res.Fits,
				Errors:             res.Errors,
				Layout:             res.Layout,
				FragmentosFallidos: res.FailedFragmentIDs,
			}
			if res.Fits {
				t.PosTotal = res.Layout.UsedPositions()
				break
			}
		}

		if t.LayoutInfo != nil && t.LayoutInfo.AlturaValidada {
			kept = append(kept, t)
			continue
		}

		// Still invalid after every iteration (or emptied/out of subsets
		// early): disarm, returning whatever orders remain to the pool.
		removed = append(removed, t.RemoveOrders(t.OrderIDSet())...)
	}
	return kept, removed
}

// pickRemovalSubset finds the orders to strip from an invalid truck: the
// subset whose total fragment count is closest to target (exact match
// first), among those that keep the truck's VCU above its floor once
// removed (or simply keep it non-empty, in bin-packing mode).
func pickRemovalSubset(t *domain.Truck, target int, binPacking bool) []*domain.Order {
	if len(t.Orders) == 0 {
		return nil
	}

	type candidate struct {
		order *domain.Order
		frags int
	}
	cands := make([]candidate, len(t.Orders))
	for i, o := range t.Orders {
		cands[i] = candidate{order: o, frags: stacking.FragmentCount(o)}
	}

	total := 0
	for _, c := range cands {
		total += c.frags
	}

	// best[sum] holds the smallest-cardinality subset achieving that exact
	// fragment-count sum (classic 0/1 subset-sum DP, reconstructable).
	type state struct {
		orders []*domain.Order
	}
	best := make(map[int]state, total+1)
	best[0] = state{}

	for _, c := range cands {
		for sum := total; sum >= 0; sum-- {
			prior, ok := best[sum]
			if !ok {
				continue
			}
			next := sum + c.frags
			nextOrders := append(append([]*domain.Order{}, prior.orders...), c.order)
			if existing, ok := best[next]; !ok || len(existing.orders) > len(nextOrders) {
				best[next] = state{orders: nextOrders}
			}
		}
	}

	sums := make([]int, 0, len(best))
	for sum := range best {
		sums = append(sums, sum)
	}
	sort.Slice(sums, func(i, j int) bool {
		di, dj := abs(sums[i]-target), abs(sums[j]-target)
		if di != dj {
			return di < dj
		}
		return len(best[sums[i]].orders) < len(best[sums[j]].orders)
	})

	for _, sum := range sums {
		subset := best[sum].orders
		if len(subset) == 0 {
			continue
		}
		if removalSatisfiesFloor(t, subset, binPacking) {
			return subset
		}
	}

	// Nothing keeps the floor: fall back to removing every order, which the
	// caller treats as disarming the truck.
	all := make([]*domain.Order, len(t.Orders))
	copy(all, t.Orders)
	return all
}

func removalSatisfiesFloor(t *domain.Truck, subset []*domain.Order, binPacking bool) bool {
	removedIDs := make(map[string]bool, len(subset))
	for _, o := range subset {
		removedIDs[o.ID] = true
	}

	remainingWeight, remainingVolume := 0.0, 0.0
	remainingCount := 0
	for _, o := range t.Orders {
		if removedIDs[o.ID] {
			continue
		}
		remainingWeight += o.WeightKg
		remainingVolume += o.VolumeM3
		remainingCount++
	}

	if remainingCount == 0 {
		return false
	}
	if binPacking {
		return true
	}

	vol, peso := 0.0, 0.0
	if t.Capacity.VolumeM3 > 0 {
		vol = remainingVolume / t.Capacity.VolumeM3
	}
	if t.Capacity.WeightKg > 0 {
		peso = remainingWeight / t.Capacity.WeightKg
	}
	max := vol
	if peso > max {
		max = peso
	}
	return max >= t.Capacity.MinVCU-1e-6
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Run drives the full validate -> adjust -> recover loop to
// completion: it validates, adjusts, and then repeatedly regenerates and
// re-validates the removed pool until nothing more moves or
// maxRecoveryRounds elapses.
func Run(ctx context.Context, trucks []*domain.Truck, opts Options) (final []*domain.Truck, notIncluded []*domain.Order) {
	rounds := 0
	defer func() { obs.ValidationCycleIterations.Observe(float64(rounds)) }()

	if err := ValidateAll(ctx, trucks, opts.StackingConfig, opts.MaxWorkers); err != nil {
		notIncluded = collectAllOrders(trucks)
		return nil, notIncluded
	}

	kept, removed := adjust(trucks, opts.StackingConfig, opts.BinPacking)
	final = kept

	for ; rounds < maxRecoveryRounds && len(removed) > 0; rounds++ {
		if opts.Regenerate == nil {
			break
		}
		newTrucks, stillUnplaced := opts.Regenerate(ctx, removed)
		if len(newTrucks) == 0 {
			notIncluded = append(notIncluded, stillUnplaced...)
			break
		}
		if err := ValidateAll(ctx, newTrucks, opts.StackingConfig, opts.MaxWorkers); err != nil {
			notIncluded = append(notIncluded, collectAllOrders(newTrucks)...)
			notIncluded = append(notIncluded, stillUnplaced...)
			break
		}
		roundKept, roundRemoved := adjust(newTrucks, opts.StackingConfig, opts.BinPacking)
		final = append(final, roundKept...)
		removed = append(stillUnplaced, roundRemoved...)
	}

	notIncluded = append(notIncluded, removed...)
	return final, notIncluded
}

func collectAllOrders(trucks []*domain.Truck) []*domain.Order {
	var out []*domain.Order
	for _, t := range trucks {
		out = append(out, t.RemoveOrders(t.OrderIDSet())...)
	}
	return out
}
