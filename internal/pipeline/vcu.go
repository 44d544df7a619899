package pipeline

import (
	"context"
	"sync"
	"time"

	"truckload/internal/adherence"
	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/reclassify"
	"truckload/internal/solver"
	"truckload/internal/truckselect"
	"truckload/internal/validation"
)

// RunVCU is the VCU pipeline: the backhaul pre-pass, the four-sub-phase
// Nestlé pass, the backhaul pass, then the validation cycle and the
// post-processing pair: reclassification, then backhaul adherence, in that
// fixed order.
func RunVCU(ctx context.Context, orders []*domain.Order, d Deps) Result {
	start := time.Now()
	remaining := make([]*domain.Order, 0, len(orders))
	remaining = append(remaining, orders...)

	var allTrucks []*domain.Truck
	var notIncluded []*domain.Order

	// Phase 1: backhaul adherence pre-pass.
	if d.AdherenciaBackhaul > 0 && !deadlineExceeded(start, d.TotalTimeout) {
		preTrucks, residue := backhaulPrePass(remaining, d, start)
		allTrucks = append(allTrucks, preTrucks...)
		remaining = residue
	}

	// Phase 2: Nestlé pass, four sub-phases in fixed order. Orders whose
	// route permits only backhaul are held back for the backhaul pass.
	if !deadlineExceeded(start, d.TotalTimeout) {
		nestleEligible, heldBack := splitBackhaulOnly(remaining, d.Routes)
		nestleTrucks := runNestlePass(nestleEligible, d, start)
		allTrucks = append(allTrucks, nestleTrucks...)
		remaining = unassignedOf(nestleEligible, nestleTrucks)
		remaining = append(remaining, heldBack...)
	}

	// Phase 3: backhaul pass for whatever still permits backhaul.
	if !deadlineExceeded(start, d.TotalTimeout) {
		bhTrucks := runBackhaulPass(remaining, d, start)
		allTrucks = append(allTrucks, bhTrucks...)
		remaining = unassignedOf(remaining, bhTrucks)
	}

	notIncluded = append(notIncluded, remaining...)

	// Validation cycle across every truck produced so far, unless the
	// client has height validation turned off.
	finalTrucks := allTrucks
	if d.ValidarAltura {
		validCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		var cycleUnplaced []*domain.Order
		finalTrucks, cycleUnplaced = validation.Run(validCtx, allTrucks, validationOptions(d, false))
		notIncluded = append(notIncluded, cycleUnplaced...)
	}

	// Post-processing: reclassification first, then adherence. Adherence
	// may undo a fresh downgrade when it converts a rampla_directa back to
	// backhaul; that interplay is intentional, keep the ordering.
	if rampla, ok := d.Capacities[domain.TruckRamplaDirecta]; ok {
		reclassify.Apply(finalTrucks, rampla)
	}
	if d.AdherenciaBackhaul > 0 {
		if bh, ok := d.Capacities[domain.TruckBackhaul]; ok {
			adherence.Apply(finalTrucks, bh, d.AdherenciaBackhaul, d.StackingConfig)
		}
	}

	return reportResult(d, Result{Trucks: finalTrucks, NotIncluded: notIncluded})
}

// backhaulPrePass estimates N required backhaul trucks from total
// weight/volume against the target ratio and builds them from orders whose
// route permits backhaul.
func backhaulPrePass(orders []*domain.Order, d Deps, start time.Time) ([]*domain.Truck, []*domain.Order) {
	capacity, ok := d.Capacities[domain.TruckBackhaul]
	if !ok {
		return nil, orders
	}

	n := estimateBackhaulTrucks(orders, capacity, d.AdherenciaBackhaul)
	if n <= 0 {
		return nil, orders
	}

	eligible := make([]*domain.Order, 0, len(orders))
	var held []*domain.Order
	for _, o := range orders {
		if orderPermitsBackhaul(d.Routes, o) {
			eligible = append(eligible, o)
		} else {
			held = append(held, o)
		}
	}
	if len(eligible) == 0 {
		return nil, orders
	}

	driver := solver.VCUDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
	_, built, residue, err := driver.Solve(eligible, capacity, domain.RouteBackhaulOnly, domain.TruckBackhaul, func(i int) string { return newTruckID(domain.TruckBackhaul) })
	if err != nil {
		return nil, orders
	}
	residue = append(residue, held...)
	tagTrucks(built, "", true)
	if len(built) > n {
		// Only the N estimated trucks belong to the pre-pass; the rest
		// return their orders to the pool for the Nestlé pass.
		trimmed := built[n:]
		built = built[:n]
		reclaimed := make([]*domain.Order, 0, len(trimmed))
		for _, t := range trimmed {
			reclaimed = append(reclaimed, t.RemoveOrders(t.OrderIDSet())...)
		}
		residue = append(residue, reclaimed...)
	}
	return built, residue
}

// estimateBackhaulTrucks computes N from aggregate weight/volume and the
// target ratio, against the backhaul capacity's weight/volume ceiling.
func estimateBackhaulTrucks(orders []*domain.Order, capacity domain.TruckCapacity, target float64) int {
	totalWeight, totalVolume := 0.0, 0.0
	for _, o := range orders {
		totalWeight += o.WeightKg
		totalVolume += o.VolumeM3
	}
	byWeight, byVolume := 0.0, 0.0
	if capacity.WeightKg > 0 {
		byWeight = totalWeight / capacity.WeightKg
	}
	if capacity.VolumeM3 > 0 {
		byVolume = totalVolume / capacity.VolumeM3
	}
	est := byWeight
	if byVolume > est {
		est = byVolume
	}
	n := int(est * target)
	if n < 0 {
		n = 0
	}
	return n
}

// nestleSubPhase is one of the fixed four sub-phases of the Nestlé pass.
type nestleSubPhase struct {
	routeType domain.RouteType
	parallel  bool
}

var nestleSubPhases = []nestleSubPhase{
	{domain.RouteMultiCEPriority, false},
	{domain.RouteNormal, true},
	{domain.RouteMultiCE, false},
	{domain.RouteMultiCD, false},
}

// runNestlePass runs the four Nestlé sub-phases in fixed order: each
// invokes the group generator restricted to its route type, then the VCU
// driver per group, "normal" fanned out across a bounded worker pool.
func runNestlePass(orders []*domain.Order, d Deps, start time.Time) []*domain.Truck {
	var trucks []*domain.Truck
	claimed := make(map[string]bool)

	for _, sub := range nestleSubPhases {
		if deadlineExceeded(start, d.TotalTimeout) {
			break
		}
		remaining := unclaimedOrders(orders, claimed)
		allGroups := generateGroups(remaining, d, groups.ModeVCU, "vcu")
		subGroups := filterByRouteType(allGroups, sub.routeType)
		if len(subGroups) == 0 {
			continue
		}

		var built []*domain.Truck
		if sub.parallel {
			built = solveGroupsParallel(subGroups, d, truckselect.PhaseNestle)
		} else {
			for _, g := range subGroups {
				t, _ := solveGroup(g, d, truckselect.PhaseNestle)
				built = append(built, t...)
			}
		}

		for _, t := range built {
			for id := range t.OrderIDSet() {
				if claimed[id] {
					continue // already claimed by an earlier sub-phase; the truck keeps its copy
				}
				claimed[id] = true
			}
		}
		trucks = append(trucks, built...)
	}
	return trucks
}

// runBackhaulPass packs whatever remains (and still permits backhaul) in
// the same route-type order, against backhaul capacity.
func runBackhaulPass(orders []*domain.Order, d Deps, start time.Time) []*domain.Truck {
	capacity, ok := d.Capacities[domain.TruckBackhaul]
	if !ok || len(orders) == 0 {
		return nil
	}
	eligible := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.AssignedTruckID == "" && orderPermitsBackhaul(d.Routes, o) {
			eligible = append(eligible, o)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	allGroups := generateGroups(eligible, d, groups.ModeVCU, "vcu")
	order := []domain.RouteType{
		domain.RouteMultiCEPriority,
		domain.RouteNormal,
		domain.RouteMultiCE,
		domain.RouteMultiCD,
	}
	var trucks []*domain.Truck
	for _, rt := range order {
		if deadlineExceeded(start, d.TotalTimeout) {
			break
		}
		for _, g := range filterByRouteType(allGroups, rt) {
			driver := solver.VCUDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
			_, built, _, err := driver.Solve(g.Orders, capacity, domain.RouteBackhaulOnly, domain.TruckBackhaul, func(i int) string { return newTruckID(domain.TruckBackhaul) })
			if err != nil {
				continue
			}
			trucks = append(trucks, built...)
		}
	}
	return trucks
}

func filterByRouteType(gs []groups.Group, rt domain.RouteType) []groups.Group {
	out := make([]groups.Group, 0, len(gs))
	for _, g := range gs {
		if g.Config.RouteType == rt {
			out = append(out, g)
		}
	}
	return out
}

// solveGroupsParallel fans groups out across the configured worker count
// (THREAD_WORKERS_NORMAL), defaulting to 8.
func solveGroupsParallel(gs []groups.Group, d Deps, phase truckselect.Phase) []*domain.Truck {
	maxWorkers := d.NormalWorkers
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	sem := make(chan struct{}, maxWorkers)
	results := make([][]*domain.Truck, len(gs))

	var wg sync.WaitGroup
	for i, g := range gs {
		i, g := i, g
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			built, _ := solveGroup(g, d, phase)
			results[i] = built
		}()
	}
	wg.Wait()

	var out []*domain.Truck
	for _, built := range results {
		out = append(out, built...)
	}
	return out
}

// splitBackhaulOnly separates orders whose route permits only backhaul
// from the rest: an order is held back for the backhaul pass when it
// matches at least one route-table entry and every entry it matches allows
// no truck type besides backhaul.
func splitBackhaulOnly(orders []*domain.Order, routes groups.RouteConfig) (eligible, backhaulOnly []*domain.Order) {
	for _, o := range orders {
		matched, nonBackhaul := false, false
		for _, entries := range routes.Routes {
			for _, entry := range entries {
				if !entry.Matches(*o) {
					continue
				}
				matched = true
				for _, tt := range entry.AllowedTruckTypes {
					if tt != domain.TruckBackhaul {
						nonBackhaul = true
					}
				}
			}
		}
		if matched && !nonBackhaul {
			backhaulOnly = append(backhaulOnly, o)
			continue
		}
		eligible = append(eligible, o)
	}
	return eligible, backhaulOnly
}

func unclaimedOrders(orders []*domain.Order, claimed map[string]bool) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if !claimed[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

func unassignedOf(orders []*domain.Order, built []*domain.Truck) []*domain.Order {
	assigned := ordersOf(built)
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if !assigned[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

