// Package adherence implements the backhaul adherence manager: after the
// VCU pipeline runs, convert the lowest-VCU Nestlé trucks to backhaul
// until a ratio target is met.
package adherence

import (
	"math"
	"sort"

	"truckload/internal/domain"
	"truckload/internal/stacking"
)

// Apply converts up to enough Nestlé trucks to backhaul to reach ceil(N*target)
// backhaul trucks, where N is len(trucks). It returns how many conversions
// it made. A candidate converts only if its route permits backhaul, its
// contents fit backhaul capacity, and it re-validates under the backhaul
// height; trucks that fail either check are left untouched.
func Apply(trucks []*domain.Truck, backhaulCapacity domain.TruckCapacity, target float64, cfg stacking.Config) int {
	if target <= 0 {
		return 0
	}

	currentBackhaul := 0
	for _, t := range trucks {
		if t.TruckType == domain.TruckBackhaul {
			currentBackhaul++
		}
	}

	deficit := int(math.Ceil(float64(len(trucks))*target)) - currentBackhaul
	if deficit <= 0 {
		return 0
	}

	candidates := make([]*domain.Truck, 0, len(trucks))
	for _, t := range trucks {
		if t.TruckType != domain.TruckBackhaul {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VCUMax() < candidates[j].VCUMax()
	})

	converted := 0
	for _, t := range candidates {
		if converted >= deficit {
			break
		}
		if !t.BackhaulAllowed {
			continue
		}
		if tryConvert(t, backhaulCapacity, cfg) {
			converted++
		}
	}
	return converted
}

// tryConvert switches t to backhaul capacity, re-validates, and reverts if
// either the physical fit or the re-validation fails.
func tryConvert(t *domain.Truck, backhaulCapacity domain.TruckCapacity, cfg stacking.Config) bool {
	originalType := t.TruckType
	originalCapacity := t.Capacity
	originalLayoutInfo := t.LayoutInfo
	originalPosTotal := t.PosTotal

	if t.TotalWeight() > backhaulCapacity.WeightKg+1e-6 ||
		t.TotalVolume() > backhaulCapacity.VolumeM3+1e-6 ||
		t.TotalPallets() > backhaulCapacity.MaxPallets+1e-6 {
		return false
	}

	t.Reclassify(domain.TruckBackhaul, backhaulCapacity)

	res := stacking.Validate(t, cfg)
	if !res.Fits {
		t.Reclassify(originalType, originalCapacity)
		t.LayoutInfo = originalLayoutInfo
		t.PosTotal = originalPosTotal
		return false
	}

	t.LayoutInfo = &domain.LayoutInfo{
		AlturaValidada:     res.Fits,
		Errors:             res.Errors,
		Layout:             res.Layout,
		FragmentosFallidos: res.FailedFragmentIDs,
	}
	t.PosTotal = res.Layout.UsedPositions()
	return true
}
