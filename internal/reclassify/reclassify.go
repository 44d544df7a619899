// Package reclassify implements the Nestlé reclassifier:
// after validation, downgrade paquetera trucks to rampla_directa when the
// real layout fits the smaller truck.
package reclassify

import "truckload/internal/domain"

// Apply downgrades every height-validated paquetera truck whose real
// layout, weight, volume, pallets, positions and VCU all fit
// ramplaCapacity. It returns how many trucks switched. Applying Apply twice
// is idempotent: a truck already switched to rampla_directa is no longer a
// paquetera truck, so the second pass leaves it untouched.
func Apply(trucks []*domain.Truck, ramplaCapacity domain.TruckCapacity) int {
	switched := 0
	for _, t := range trucks {
		if fits(t, ramplaCapacity) {
			t.Reclassify(domain.TruckRamplaDirecta, ramplaCapacity)
			switched++
		}
	}
	return switched
}

func fits(t *domain.Truck, cap domain.TruckCapacity) bool {
	if t.TruckType != domain.TruckPaquetera {
		return false
	}
	if t.LayoutInfo == nil || !t.LayoutInfo.AlturaValidada || t.LayoutInfo.Layout == nil {
		return false
	}
	if t.LayoutInfo.Layout.MaxUsedHeight() > cap.HeightCm+1e-6 {
		return false
	}
	if t.TotalWeight() > cap.WeightKg+1e-6 {
		return false
	}
	if t.TotalVolume() > cap.VolumeM3+1e-6 {
		return false
	}
	if t.TotalPallets() > cap.MaxPallets+1e-6 {
		return false
	}
	if t.PosTotal > cap.MaxPositions {
		return false
	}
	return vcuMax(t, cap) >= cap.MinVCU-1e-6
}

func vcuMax(t *domain.Truck, cap domain.TruckCapacity) float64 {
	vol, peso := 0.0, 0.0
	if cap.VolumeM3 > 0 {
		vol = t.TotalVolume() / cap.VolumeM3
	}
	if cap.WeightKg > 0 {
		peso = t.TotalWeight() / cap.WeightKg
	}
	if vol > peso {
		return vol
	}
	return peso
}
