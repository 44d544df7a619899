package stacking

import (
	"fmt"
	"sort"

	"truckload/internal/domain"
)

// Result is what the validator reports back for one Truck.
type Result struct {
	Fits              bool
	Errors            []string
	Layout            *domain.Layout
	FailedFragmentIDs []string
}

// Validate builds a physical layout for the truck's current orders and
// reports whether every fragment fit. It is pure: the truck is not mutated,
// the caller writes the result back into Truck.LayoutInfo.
func Validate(truck *domain.Truck, cfg Config) Result {
	frags := extractFragments(truck.Orders)
	skuIndex := buildSKUIndex(truck.Orders)

	placeable := make([]fragment, 0, len(frags))
	var errs []string
	var failed []fragment

	for _, f := range frags {
		if f.frag.HeightCm > truck.Capacity.HeightCm+1e-6 {
			failed = append(failed, f)
			errs = append(errs, fmt.Sprintf(
				"fragment %s (order %s) height %.1fcm exceeds truck interior height %.1fcm",
				f.id, f.orderID, f.frag.HeightCm, truck.Capacity.HeightCm))
			continue
		}
		placeable = append(placeable, f)
	}

	sort.SliceStable(placeable, func(i, j int) bool {
		return placementOrderRank(placeable[i].frag.Category) < placementOrderRank(placeable[j].frag.Category)
	})

	layout := &domain.Layout{Positions: make([]*domain.FloorPosition, 0, truck.Capacity.MaxPositions)}

	for _, f := range placeable {
		if placeFragment(layout, truck.Capacity, f, cfg, skuIndex) {
			continue
		}
		failed = append(failed, f)
		errs = append(errs, fmt.Sprintf("fragment %s (order %s) could not be placed", f.id, f.orderID))
	}

	failedIDs := make([]string, len(failed))
	for i, f := range failed {
		failedIDs[i] = f.id
	}

	return Result{
		Fits:              len(failed) == 0,
		Errors:            errs,
		Layout:            layout,
		FailedFragmentIDs: failedIDs,
	}
}

func buildSKUIndex(orders []*domain.Order) map[string]domain.SKU {
	idx := make(map[string]domain.SKU)
	for _, o := range orders {
		for _, sku := range o.SKUs {
			idx[sku.ID] = sku
		}
	}
	return idx
}

// placeFragment runs the three-tier greedy placement: consolidate onto an
// open pallet, else stack a new level, else allocate a fresh floor
// position.
func placeFragment(layout *domain.Layout, cap domain.TruckCapacity, f fragment, cfg Config, skuIndex map[string]domain.SKU) bool {
	frag := f.frag
	var maxStackHeight *float64
	if sku, ok := skuIndex[frag.SKUID]; ok {
		maxStackHeight = sku.MaxStackHeight
	}

	if cfg.PermiteConsolidacion && frag.IsPicking {
		for _, pos := range layout.Positions {
			top := pos.Top()
			if top == nil || !allPicking(top) {
				continue
			}
			if canConsolidate(pos, top, frag, cfg, cap) {
				top.Fragments = append(top.Fragments, frag)
				return true
			}
		}
	}

	for _, pos := range layout.Positions {
		if len(pos.Pallets) >= cap.VerticalLevels {
			continue
		}
		top := pos.Top()
		if top == nil {
			continue
		}
		usedHeight := pos.UsedHeight()
		if canStackOn(top, frag.Category, frag.SKUID, frag.HeightCm, usedHeight, cap.HeightCm, maxStackHeight) {
			pos.Pallets = append(pos.Pallets, &domain.PhysicalPallet{Fragments: []domain.PhysicalFragment{frag}})
			return true
		}
	}

	if len(layout.Positions) >= cap.MaxPositions {
		return false
	}
	pos := &domain.FloorPosition{
		Index:   len(layout.Positions),
		Pallets: []*domain.PhysicalPallet{{Fragments: []domain.PhysicalFragment{frag}}},
	}
	layout.Positions = append(layout.Positions, pos)
	return true
}

func allPicking(p *domain.PhysicalPallet) bool {
	for _, f := range p.Fragments {
		if !f.IsPicking {
			return false
		}
	}
	return len(p.Fragments) > 0
}

// canConsolidate reports whether frag (a picking fragment) may merge into an
// existing picking-only pallet rather than opening a new level: it respects
// MaxSKUsPorPallet and AlturaMaxPickingApilado, and never breaches the
// truck's interior height.
func canConsolidate(pos *domain.FloorPosition, top *domain.PhysicalPallet, frag domain.PhysicalFragment, cfg Config, cap domain.TruckCapacity) bool {
	skus := make(map[string]bool)
	for _, fr := range top.Fragments {
		skus[fr.SKUID] = true
	}
	skus[frag.SKUID] = true
	if cfg.MaxSKUsPorPallet > 0 && len(skus) > cfg.MaxSKUsPorPallet {
		return false
	}

	newPalletHeight := top.HeightCm() + frag.HeightCm
	if cfg.AlturaMaxPickingApilado > 0 && newPalletHeight > cfg.AlturaMaxPickingApilado+1e-6 {
		return false
	}

	belowHeight := pos.UsedHeight() - top.HeightCm()
	return belowHeight+newPalletHeight <= cap.HeightCm+1e-6
}
