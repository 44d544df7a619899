package solver

import (
	"truckload/internal/domain"
)

// VCUDriver maximises loaded volume/weight utilisation per truck,
// discarding any truck that never clears the capacity's MinVCU floor.
type VCUDriver struct {
	MaxOrdersPerTruck  int
	MaxOrdersPerCentre int
	MaxTrucks          int
	AgruparPorPO       bool
}

// Solve builds the model for orders/capacity and runs the constructive
// FFD placement, dropping trucks that fail MinVCU back into Unplaced.
func (d VCUDriver) Solve(orders []*domain.Order, capacity domain.TruckCapacity, routeType domain.RouteType, truckType domain.TruckType, idFn func(int) string) (Solution, []*domain.Truck, []*domain.Order, error) {
	m := NewModel(orders, capacity)
	m.Objective = ObjectiveMaximizeVCU
	m.NTrucks = EstimateTruckCount(orders, capacity, 1, d.MaxTrucks)
	m.MinVCU = capacity.MinVCU
	if d.AgruparPorPO {
		m.SamePOGroups = samePOGroups(orders)
	}
	m.MaxOrdersPerTruck = d.MaxOrdersPerTruck
	m.MaxOrdersPerCentre = d.MaxOrdersPerCentre

	open, excluded := assign(m, false)

	index := make(map[*domain.Order]int, len(orders))
	for i, o := range orders {
		index[o] = i
	}

	trucks := make([]*domain.Truck, 0, len(open))
	var unplaced []*domain.Order
	truckAssignments := make([][]int, 0, len(open))
	var excludedIdx []int

	for i, ot := range open {
		t := domain.NewTruck(idFn(i), routeType, truckType, capacity)
		batch := make([]*domain.Order, 0, ot.orderCount())
		for _, b := range ot.bundles {
			batch = append(batch, b.orders...)
		}
		if err := t.AgregarPedidos(batch); err != nil {
			return Solution{}, nil, nil, err
		}
		if !t.MeetsMinVCU() {
			unplaced = append(unplaced, batch...)
			t.RemoveOrders(t.OrderIDSet())
			continue
		}
		trucks = append(trucks, t)
		assignIdx := make([]int, 0, len(batch))
		for _, o := range batch {
			assignIdx = append(assignIdx, index[o])
		}
		truckAssignments = append(truckAssignments, assignIdx)
	}

	unplaced = append(unplaced, excluded...)
	for _, o := range excluded {
		excludedIdx = append(excludedIdx, index[o])
	}

	return Solution{TruckAssignments: truckAssignments, Excluded: excludedIdx}, trucks, unplaced, nil
}
