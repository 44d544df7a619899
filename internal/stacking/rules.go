package stacking

import "truckload/internal/domain"

// canStackOn reports whether a pallet whose dominant category is pDominant,
// carrying pSkuID (only meaningful when pDominant is si_mismo) and standing
// pHeight cm tall, may be placed on top of the pallet q.
// usedHeight is the floor position's height already consumed below q's top;
// capacityHeight is the truck's interior height.
func canStackOn(q *domain.PhysicalPallet, pDominant domain.StackCategory, pSkuID string, pHeight, usedHeight, capacityHeight float64, maxStackHeight *float64) bool {
	qDominant := q.DominantCategory()

	if qDominant == domain.CategoryNoApilable || pDominant == domain.CategoryNoApilable {
		return false
	}

	switch qDominant {
	case domain.CategoryBase:
		if pDominant != domain.CategorySuperior && pDominant != domain.CategoryFlexible {
			return false
		}
	case domain.CategorySiMismo:
		qSkuID, ok := q.SingleSKUID()
		if !ok || pDominant != domain.CategorySiMismo || qSkuID != pSkuID {
			return false
		}
		if maxStackHeight != nil && usedHeight+pHeight > *maxStackHeight+1e-6 {
			return false
		}
	case domain.CategoryFlexible:
		if pDominant != domain.CategorySuperior && pDominant != domain.CategoryFlexible {
			return false
		}
	case domain.CategorySuperior:
		if pDominant != domain.CategoryFlexible && pDominant != domain.CategorySuperior {
			return false
		}
	}

	return pHeight <= capacityHeight-usedHeight+1e-6
}
