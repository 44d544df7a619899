// Package solver implements the two optimisation drivers: it encodes one
// group's orders as an integer model and decodes a solution back into
// domain.Trucks. Solver is the integration seam a real MIP/CP-SAT engine
// would implement; the constructive assignment in this package is the
// in-process stand-in.
package solver

import (
	"time"

	"truckload/internal/domain"
)

// Scaling factors. These MUST stay identical between model construction
// and decoding, or the decoded pos_total and VCU drift from what the model
// believed it was enforcing.
const (
	VCUScale   = 1000
	CountScale = 10
)

// DefaultMaxTrucks is the hard upper bound on trucks considered per group
// when no override (MAX_CAMIONES_CP_SAT) is configured.
const DefaultMaxTrucks = 20

// Objective selects the model's optimisation goal.
type Objective int

const (
	ObjectiveMaximizeVCU Objective = iota
	ObjectiveMinimizeTrucks
)

// OrderAttrs is one order's contribution to the model.
type OrderAttrs struct {
	Order       *domain.Order
	WeightKg    float64
	VolumeM3    float64
	Pallets     float64 // scaled x10 conceptually; kept as float64 here
	Counts      domain.StackCounts
	VCUVolShare float64 // order.VolumeM3 / capacity.VolumeM3, scaled x1000 at encode time
	VCUPesoShare float64
}

// Model carries the variables, constraints and objective a solver must
// honour.
type Model struct {
	Objective Objective
	Orders    []OrderAttrs
	Capacity  domain.TruckCapacity
	NTrucks   int // upper bound on truck slots, from FFD + slack

	MinVCU float64 // ignored when Objective == ObjectiveMinimizeTrucks

	// PO-grouping: pairs of order indices that must share a truck.
	SamePOGroups [][2]int

	// MaxOrdersPerTruck is the generic per-truck order cap (client MAX_ORDENES).
	MaxOrdersPerTruck int
	// MaxOrdersPerCentre caps orders per destination centre within one
	// truck (walmart multi_cd rule); zero means no cap.
	MaxOrdersPerCentre int

	TimeLimit time.Duration
}

// Solution is what a solver returns: the orders assigned to each truck slot,
// plus the orders it could not place (excluded for bin-packing, or simply
// left for the next phase for VCU).
type Solution struct {
	TruckAssignments [][]int // index j -> order indices assigned to truck j
	Excluded         []int   // order indices the model filtered before solving
}

// Solver is the contract with the external engine.
type Solver interface {
	Solve(m Model) (Solution, error)
}

// NewModel builds the model for one group of orders against one truck
// capacity. Callers (the VCU/bin-packing drivers) fill in the
// objective-specific fields, including the truck-slot bound NTrucks.
func NewModel(orders []*domain.Order, capacity domain.TruckCapacity) Model {
	attrs := make([]OrderAttrs, 0, len(orders))
	for _, o := range orders {
		volShare := 0.0
		if capacity.VolumeM3 > 0 {
			volShare = o.VolumeM3 / capacity.VolumeM3
		}
		pesoShare := 0.0
		if capacity.WeightKg > 0 {
			pesoShare = o.WeightKg / capacity.WeightKg
		}
		attrs = append(attrs, OrderAttrs{
			Order:        o,
			WeightKg:     o.WeightKg,
			VolumeM3:     o.VolumeM3,
			Pallets:      o.PalletsCapacidad(),
			Counts:       o.Counts,
			VCUVolShare:  volShare,
			VCUPesoShare: pesoShare,
		})
	}
	return Model{
		Orders:   attrs,
		Capacity: capacity,
	}
}

// samePOGroups derives index pairs of orders sharing a purchase-order id,
// for the AGRUPAR_POR_PO constraint.
func samePOGroups(orders []*domain.Order) [][2]int {
	byPO := make(map[string][]int)
	for i, o := range orders {
		if o.PurchaseOrderID == "" {
			continue
		}
		byPO[o.PurchaseOrderID] = append(byPO[o.PurchaseOrderID], i)
	}
	pairs := make([][2]int, 0)
	for _, idxs := range byPO {
		for i := 1; i < len(idxs); i++ {
			pairs = append(pairs, [2]int{idxs[0], idxs[i]})
		}
	}
	return pairs
}
