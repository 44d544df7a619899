package stacking

import (
	"fmt"
	"math"

	"truckload/internal/domain"
)

const legacyHeightPerPallet = 150.0 // cm, for orders without SKU detail

// fragment is the extraction-time representation of a domain.PhysicalFragment
// plus a stable id used for failure reporting and adjust()'s fragment-count
// matching.
type fragment struct {
	id      string
	orderID string
	frag    domain.PhysicalFragment
}

// extractFragments builds the full fragment list for a truck's current
// orders.
func extractFragments(orders []*domain.Order) []fragment {
	out := make([]fragment, 0)
	for _, order := range orders {
		if len(order.SKUs) > 0 {
			out = append(out, extractSKUFragments(order)...)
			continue
		}
		out = append(out, fragment{
			id:      order.ID,
			orderID: order.ID,
			frag: domain.PhysicalFragment{
				SKUID:         "",
				ParentOrderID: order.ID,
				Fraction:      1.0,
				HeightCm:      legacyHeightPerPallet * order.PalletsCapacidad(),
				WeightKg:      order.WeightKg,
				VolumeM3:      order.VolumeM3,
				Category:      order.DominantCategory(),
				IsPicking:     false,
			},
		})
	}
	return out
}

func extractSKUFragments(order *domain.Order) []fragment {
	out := make([]fragment, 0, len(order.SKUs))
	for _, sku := range order.SKUs {
		full := math.Floor(sku.PalletQty)
		unitWeight := sku.UnitWeightKg
		unitVolume := sku.UnitVolumeM3
		category := sku.DominantCategory()

		for i := 0; i < int(full); i++ {
			out = append(out, fragment{
				id:      fmt.Sprintf("%s#%d", sku.ID, i),
				orderID: order.ID,
				frag: domain.PhysicalFragment{
					SKUID:         sku.ID,
					ParentOrderID: order.ID,
					Fraction:      1.0,
					HeightCm:      sku.FullPalletH,
					WeightKg:      unitWeight,
					VolumeM3:      unitVolume,
					Category:      category,
					IsPicking:     false,
				},
			})
		}

		residue := sku.PalletQty - full
		if residue > 0.01 {
			height := residue * sku.FullPalletH
			if sku.PickingH != nil {
				height = *sku.PickingH
			}
			out = append(out, fragment{
				id:      fmt.Sprintf("%s#picking", sku.ID),
				orderID: order.ID,
				frag: domain.PhysicalFragment{
					SKUID:         sku.ID,
					ParentOrderID: order.ID,
					Fraction:      residue,
					HeightCm:      height,
					WeightKg:      residue * unitWeight,
					VolumeM3:      residue * unitVolume,
					Category:      category,
					IsPicking:     true,
				},
			})
		}
	}
	return out
}

// FragmentCount returns how many physical fragments order would extract
// into; the validation cycle's subset-removal search matches on this count.
func FragmentCount(order *domain.Order) int {
	return len(extractFragments([]*domain.Order{order}))
}

// placementOrderRank maps a category to its index in domain.PlacementOrder,
// for sorting fragments before placement.
func placementOrderRank(cat domain.StackCategory) int {
	for i, c := range domain.PlacementOrder {
		if c == cat {
			return i
		}
	}
	return len(domain.PlacementOrder)
}
