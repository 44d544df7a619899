package domain

import "fmt"

// Order is one customer order queued for truck assignment.
type Order struct {
	ID                    string
	PurchaseOrderID       string
	OriginWarehouse       string
	DestinationCentre     string
	DestinationExpedition string
	Flow                  *string // order-flow tag (OC); nil when absent

	WeightKg    float64
	VolumeM3    float64
	PalletCount float64
	Valuation   float64

	Valuable    bool
	ColdChain   bool
	Promotional bool
	SmallVolume bool
	DirectedLot bool
	Chocolates  bool

	Counts StackCounts

	SKUs []SKU // optional, legacy orders carry none

	// PalletsCapacidadOverride lets one client report a "real pallets"
	// figure distinct from the configured PalletCount.
	PalletsCapacidadOverride *float64

	// Assignment state, mutated as the order moves between pools.
	AssignedTruckID string
	AssignedGroupID string
}

// NewOrder validates and constructs an Order: the five stackability counts
// must be non-negative reals summing to at most the pallet count.
func NewOrder(o Order) (Order, error) {
	if o.ID == "" {
		return Order{}, fmt.Errorf("%w: order id required", ErrInvalidOrder)
	}
	if o.WeightKg < 0 || o.VolumeM3 < 0 || o.PalletCount < 0 {
		return Order{}, fmt.Errorf("%w: order %s has negative physical totals", ErrInvalidOrder, o.ID)
	}
	for _, cnt := range []float64{o.Counts.Base, o.Counts.Superior, o.Counts.Flexible, o.Counts.NoApilable, o.Counts.SiMismo} {
		if cnt < 0 {
			return Order{}, fmt.Errorf("%w: order %s has a negative stackability count", ErrInvalidOrder, o.ID)
		}
	}
	if o.Counts.Sum() > o.PalletCount+epsilon {
		return Order{}, fmt.Errorf("%w: order %s stackability counts (%.3f) exceed pallet count (%.3f)",
			ErrInvalidOrder, o.ID, o.Counts.Sum(), o.PalletCount)
	}
	for i, sku := range o.SKUs {
		validated, err := NewSKU(sku)
		if err != nil {
			return Order{}, fmt.Errorf("order %s sku[%d]: %w", o.ID, i, err)
		}
		o.SKUs[i] = validated
	}
	return o, nil
}

// PalletsCapacidad returns the real-pallets override when present, else the
// plain configured pallet count.
func (o Order) PalletsCapacidad() float64 {
	if o.PalletsCapacidadOverride != nil {
		return *o.PalletsCapacidadOverride
	}
	return o.PalletCount
}

// IsAssigned reports whether this order currently belongs to a truck.
func (o Order) IsAssigned() bool {
	return o.AssignedTruckID != ""
}

// DominantCategory derives the order's single stackability class (used for
// legacy, SKU-less orders) by priority: no_apilable > base > superior >
// si_mismo > flexible.
func (o Order) DominantCategory() StackCategory {
	return o.Counts.dominant()
}

// HasFlow reports whether the order carries an order-flow tag.
func (o Order) HasFlow() bool {
	return o.Flow != nil && *o.Flow != ""
}

// FlowOrEmpty returns the order-flow tag or "" when absent.
func (o Order) FlowOrEmpty() string {
	if o.Flow == nil {
		return ""
	}
	return *o.Flow
}
