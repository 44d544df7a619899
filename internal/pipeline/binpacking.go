package pipeline

import (
	"context"

	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/solver"
	"truckload/internal/truckselect"
	"truckload/internal/validation"
)

// RunBinPacking is the bin-packing pipeline: one pass of the group
// generator in binpacking mode, the bin-packing driver per group, and a
// single run of the validation cycle. No adherence, no reclassification.
func RunBinPacking(ctx context.Context, orders []*domain.Order, d Deps) Result {
	var notIncluded []*domain.Order
	var allTrucks []*domain.Truck

	allGroups := generateGroups(orders, d, groups.ModeBinPacking, "binpacking")

	for _, g := range allGroups {
		truckType, ok := d.Selector.Select(truckselect.Request{
			RouteType: g.Config.RouteType,
			Allowed:   g.Config.AllowedTruckTypes,
		})
		if !ok {
			notIncluded = append(notIncluded, g.Orders...)
			continue
		}
		capacity, ok := d.Capacities[truckType]
		if !ok {
			notIncluded = append(notIncluded, g.Orders...)
			continue
		}

		driver := solver.BinPackDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
		if g.Config.RouteType == domain.RouteMultiCD {
			driver.MaxOrdersPerCentre = d.MaxOrdenesCentre
		}

		built, excluded, err := driver.Solve(g.Orders, capacity, g.Config.RouteType, truckType, func(i int) string { return newTruckID(truckType) })
		if err != nil {
			notIncluded = append(notIncluded, g.Orders...)
			continue
		}
		notIncluded = append(notIncluded, excluded...)
		tagTrucks(built, g.Config.ID, allowsBackhaul(g.Config.AllowedTruckTypes))
		allTrucks = append(allTrucks, built...)
	}

	finalTrucks := allTrucks
	if d.ValidarAltura {
		var cycleUnplaced []*domain.Order
		finalTrucks, cycleUnplaced = validation.Run(ctx, allTrucks, validationOptions(d, true))
		notIncluded = append(notIncluded, cycleUnplaced...)
	}

	return reportResult(d, Result{Trucks: finalTrucks, NotIncluded: notIncluded})
}
