package domain

import "fmt"

// SKU is one line item of an Order: a pallet quantity of a single product,
// carrying the physical attributes the stacking validator needs to build
// fragments.
type SKU struct {
	ID             string
	ParentOrderID  string
	PalletQty      float64
	FullPalletH    float64 // cm
	PickingH       *float64
	UnitWeightKg   float64
	UnitVolumeM3   float64
	MaxStackHeight *float64 // cm, only meaningful for si_mismo
	Counts         StackCounts
}

// NewSKU validates and constructs a SKU record.
func NewSKU(s SKU) (SKU, error) {
	if s.ID == "" {
		return SKU{}, fmt.Errorf("%w: sku id required", ErrInvalidSKU)
	}
	if s.PalletQty < 0 {
		return SKU{}, fmt.Errorf("%w: sku %s negative pallet quantity", ErrInvalidSKU, s.ID)
	}
	hasFullHeight := s.FullPalletH > epsilon
	hasPickingHeight := s.PickingH != nil && *s.PickingH > epsilon
	if !hasFullHeight && !hasPickingHeight {
		return SKU{}, fmt.Errorf("%w: sku %s needs a positive full-pallet or picking height", ErrInvalidSKU, s.ID)
	}
	if s.Counts.Sum() > s.PalletQty+0.1 {
		return SKU{}, fmt.Errorf("%w: sku %s category counts (%.3f) exceed pallet quantity (%.3f) by more than 0.1",
			ErrInvalidSKU, s.ID, s.Counts.Sum(), s.PalletQty)
	}
	return s, nil
}

// DominantCategory derives the SKU's single stackability class by priority:
// no_apilable > base > superior > si_mismo > flexible.
func (s SKU) DominantCategory() StackCategory {
	return s.Counts.dominant()
}
