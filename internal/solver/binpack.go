package solver

import (
	"truckload/internal/domain"
)

// BinPackDriver minimises truck count with no VCU floor,
// opening trucks past the FFD+slack bound if that is what it takes to place
// every order: in bin-packing mode, placing everything outranks the
// truck-count estimate.
type BinPackDriver struct {
	MaxOrdersPerTruck  int
	MaxOrdersPerCentre int
	MaxTrucks          int
	AgruparPorPO       bool
}

// Solve places every placeable order into a truck of the given capacity.
// Orders that exceed the capacity on their own (or whose PO bundle does)
// are filtered before model construction and returned as excluded, never
// as an error.
func (d BinPackDriver) Solve(orders []*domain.Order, capacity domain.TruckCapacity, routeType domain.RouteType, truckType domain.TruckType, idFn func(int) string) ([]*domain.Truck, []*domain.Order, error) {
	m := NewModel(orders, capacity)
	m.Objective = ObjectiveMinimizeTrucks
	m.NTrucks = EstimateTruckCount(orders, capacity, 5, d.MaxTrucks)
	if d.AgruparPorPO {
		m.SamePOGroups = samePOGroups(orders)
	}
	m.MaxOrdersPerTruck = d.MaxOrdersPerTruck
	m.MaxOrdersPerCentre = d.MaxOrdersPerCentre

	open, excluded := assign(m, true)

	trucks := make([]*domain.Truck, 0, len(open))
	for i, ot := range open {
		t := domain.NewTruck(idFn(i), routeType, truckType, capacity)
		batch := make([]*domain.Order, 0, ot.orderCount())
		for _, b := range ot.bundles {
			batch = append(batch, b.orders...)
		}
		if err := t.AgregarPedidos(batch); err != nil {
			return nil, nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, excluded, nil
}
