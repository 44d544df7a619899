// Package pipeline implements the two top-level optimisation passes: the
// VCU pipeline cascades backhaul pre-pass, Nestlé sub-phases and a
// backhaul pass, then runs the validation cycle once over all trucks those
// phases produced (no phase is validated on its own); the bin-packing
// pipeline is a single group-solve-validate pass.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"truckload/internal/domain"
	"truckload/internal/groups"
	"truckload/internal/obs"
	"truckload/internal/solver"
	"truckload/internal/stacking"
	"truckload/internal/truckselect"
	"truckload/internal/validation"
)

// Deps is the per-client configuration and collaborators a pipeline run
// needs.
type Deps struct {
	Client             string
	Routes             groups.RouteConfig
	Capacities         map[domain.TruckType]domain.TruckCapacity
	StackingConfig     stacking.Config
	Budget             groups.BudgetConfig
	Selector           truckselect.Selector
	AgruparPorPO       bool
	ValidarAltura      bool
	MaxOrdenes         int
	MaxOrdenesCentre   int // walmart multi_cd per-centre cap
	MaxTrucks          int // truck-slot bound override (MAX_CAMIONES_CP_SAT)
	NormalWorkers      int // "normal" sub-phase fan-out (THREAD_WORKERS_NORMAL)
	ValidationWorkers  int // validation pool size (GROUP_MAX_WORKERS)
	AdherenciaBackhaul float64
	TotalTimeout       time.Duration
}

// Result is the outcome of one pipeline run.
type Result struct {
	Trucks      []*domain.Truck
	NotIncluded []*domain.Order
}

func newTruckID(truckType domain.TruckType) string {
	return truckType.String() + "-" + uuid.NewString()[:8]
}

// ordersOf collects the combined order-id set across trucks.
func ordersOf(trucks []*domain.Truck) map[string]bool {
	set := make(map[string]bool)
	for _, t := range trucks {
		for id := range t.OrderIDSet() {
			set[id] = true
		}
	}
	return set
}

func deadlineExceeded(start time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return time.Since(start) > timeout-2*time.Second
}

// solveGroup runs the VCU driver for one group against one truck
// capacity, picked by the client's Selector.
func solveGroup(g groups.Group, d Deps, phase truckselect.Phase) (trucks []*domain.Truck, unplaced []*domain.Order) {
	truckType, ok := d.Selector.Select(truckselect.Request{
		RouteType: g.Config.RouteType,
		Allowed:   g.Config.AllowedTruckTypes,
		Phase:     phase,
	})
	if !ok {
		return nil, g.Orders
	}
	capacity, ok := d.Capacities[truckType]
	if !ok {
		return nil, g.Orders
	}

	driver := solver.VCUDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
	if g.Config.RouteType == domain.RouteMultiCD {
		driver.MaxOrdersPerCentre = d.MaxOrdenesCentre
	}

	_, built, residue, err := driver.Solve(g.Orders, capacity, g.Config.RouteType, truckType, func(i int) string { return newTruckID(truckType) })
	if err != nil {
		return nil, g.Orders
	}
	tagTrucks(built, g.Config.ID, allowsBackhaul(g.Config.AllowedTruckTypes))
	return built, residue
}

// allowsBackhaul reports whether a route entry's allowed truck types
// include backhaul.
func allowsBackhaul(types []domain.TruckType) bool {
	for _, tt := range types {
		if tt == domain.TruckBackhaul {
			return true
		}
	}
	return false
}

// tagTrucks stamps the group id and the route's backhaul permission onto
// freshly built trucks and derives each truck's origin/destination lists
// from the orders it carries.
func tagTrucks(trucks []*domain.Truck, groupID string, backhaulAllowed bool) {
	for _, t := range trucks {
		t.BackhaulAllowed = backhaulAllowed
		if groupID != "" {
			t.GroupID = groupID
			for _, o := range t.Orders {
				o.AssignedGroupID = groupID
			}
		}
		origins := make(map[string]bool)
		dests := make(map[string]bool)
		for _, o := range t.Orders {
			if o.OriginWarehouse != "" {
				origins[o.OriginWarehouse] = true
			}
			if o.DestinationCentre != "" {
				dests[o.DestinationCentre] = true
			}
		}
		t.Origins = sortedKeys(origins)
		t.Destinations = sortedKeys(dests)
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// regenerateResidue is the recovery policy: rerun the VCU driver against
// nestlé-allowed capacity first, then backhaul-allowed capacity, for
// whatever orders a validation cycle removed.
func regenerateResidue(d Deps) func(ctx context.Context, orders []*domain.Order) ([]*domain.Truck, []*domain.Order) {
	return func(ctx context.Context, orders []*domain.Order) ([]*domain.Truck, []*domain.Order) {
		remaining := orders
		var trucks []*domain.Truck

		for _, truckType := range []domain.TruckType{domain.TruckPaquetera, domain.TruckRamplaDirecta} {
			if len(remaining) == 0 {
				break
			}
			capacity, ok := d.Capacities[truckType]
			if !ok {
				continue
			}
			driver := solver.VCUDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
			_, built, residue, err := driver.Solve(remaining, capacity, domain.RouteNormal, truckType, func(i int) string { return newTruckID(truckType) })
			if err != nil {
				continue
			}
			for _, t := range built {
				tagTrucks([]*domain.Truck{t}, "", ordersPermitBackhaul(d.Routes, t.Orders))
			}
			trucks = append(trucks, built...)
			remaining = residue
		}

		if len(remaining) > 0 {
			if capacity, ok := d.Capacities[domain.TruckBackhaul]; ok {
				bhEligible := make([]*domain.Order, 0, len(remaining))
				var held []*domain.Order
				for _, o := range remaining {
					if orderPermitsBackhaul(d.Routes, o) {
						bhEligible = append(bhEligible, o)
					} else {
						held = append(held, o)
					}
				}
				if len(bhEligible) > 0 {
					driver := solver.VCUDriver{MaxOrdersPerTruck: d.MaxOrdenes, MaxTrucks: d.MaxTrucks, AgruparPorPO: d.AgruparPorPO}
					_, built, residue, err := driver.Solve(bhEligible, capacity, domain.RouteBackhaulOnly, domain.TruckBackhaul, func(i int) string { return newTruckID(domain.TruckBackhaul) })
					if err == nil {
						tagTrucks(built, "", true)
						trucks = append(trucks, built...)
						remaining = append(held, residue...)
					}
				}
			}
		}

		return trucks, remaining
	}
}

// orderPermitsBackhaul reports whether the order matches at least one
// route-table entry whose allowed truck types include backhaul.
func orderPermitsBackhaul(routes groups.RouteConfig, o *domain.Order) bool {
	for _, entries := range routes.Routes {
		for _, entry := range entries {
			if entry.Matches(*o) && allowsBackhaul(entry.AllowedTruckTypes) {
				return true
			}
		}
	}
	return false
}

// ordersPermitBackhaul reports whether every order's route permits
// backhaul.
func ordersPermitBackhaul(routes groups.RouteConfig, orders []*domain.Order) bool {
	if len(orders) == 0 {
		return false
	}
	for _, o := range orders {
		if !orderPermitsBackhaul(routes, o) {
			return false
		}
	}
	return true
}

func validationOptions(d Deps, binPacking bool) validation.Options {
	return validation.Options{
		StackingConfig: d.StackingConfig,
		BinPacking:     binPacking,
		MaxWorkers:     d.ValidationWorkers,
		Regenerate:     regenerateResidue(d),
	}
}

// generateGroups wraps groups.Generate with the GroupsGenerated counter.
func generateGroups(orders []*domain.Order, d Deps, mode groups.Mode, modeLabel string) []groups.Group {
	gs := groups.Generate(orders, d.Routes, mode, d.Budget)
	obs.GroupsGenerated.WithLabelValues(d.Client, modeLabel).Add(float64(len(gs)))
	return gs
}

// reportResult increments TrucksProduced (by truck type) and
// OrdersNotIncluded for one finished pipeline run.
func reportResult(d Deps, r Result) Result {
	for _, t := range r.Trucks {
		obs.TrucksProduced.WithLabelValues(d.Client, t.TruckType.String()).Inc()
	}
	if len(r.NotIncluded) > 0 {
		obs.OrdersNotIncluded.WithLabelValues(d.Client).Add(float64(len(r.NotIncluded)))
	}
	return r
}
