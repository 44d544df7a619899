package groups

import "truckload/internal/domain"

// Generate partitions orders into disjoint groups per the client route
// tables. Every order appears in at most one group; groups with zero
// orders are dropped.
func Generate(orders []*domain.Order, cfg RouteConfig, mode Mode, budgetCfg BudgetConfig) []Group {
	remaining := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		remaining[o.ID] = o
	}

	groups := make([]Group, 0)

	for _, routeType := range cfg.precedence(mode) {
		for _, entry := range cfg.Routes[routeType] {
			matched := take(remaining, entry)
			if len(matched) == 0 {
				continue
			}
			groups = append(groups, splitForEntry(routeType, entry, matched, cfg)...)
		}
	}

	assignTimeBudgets(groups, budgetCfg)
	return groups
}

// take removes and returns every still-unassigned order matching entry.
func take(remaining map[string]*domain.Order, entry domain.RouteTableEntry) []*domain.Order {
	matched := make([]*domain.Order, 0)
	for id, o := range remaining {
		if entry.Matches(*o) {
			matched = append(matched, o)
			delete(remaining, id)
		}
	}
	return matched
}

// splitForEntry applies the order-flow grouping rule: when the client
// uses order flows and the entry names a single specific origin, matched
// orders are split by distinct flow tag (one group per tag spanning all of
// the entry's centres; orders are not further split by centre), mixed-flow groups are
// emitted for configured flow combinations when all their tags are present,
// and a catch-all "no-flow" group collects orders lacking a flow tag.
func splitForEntry(routeType domain.RouteType, entry domain.RouteTableEntry, matched []*domain.Order, cfg RouteConfig) []Group {
	if !cfg.UsaOC || len(entry.Origins) != 1 {
		return []Group{{
			Config: domain.GroupConfig{
				ID:                newGroupID(routeType),
				RouteType:         routeType,
				Destinations:      entry.Centres,
				Centres:           entry.Centres,
				FlowFilter:        entry.FlowFilter,
				AllowedTruckTypes: entry.AllowedTruckTypes,
			},
			Orders: matched,
		}}
	}

	byFlow := make(map[string][]*domain.Order)
	noFlow := make([]*domain.Order, 0)
	for _, o := range matched {
		if !o.HasFlow() {
			noFlow = append(noFlow, o)
			continue
		}
		byFlow[o.FlowOrEmpty()] = append(byFlow[o.FlowOrEmpty()], o)
	}

	result := make([]Group, 0, len(byFlow)+1)

	for _, combo := range cfg.MixGrupos {
		if !allTagsPresent(byFlow, combo) {
			continue
		}
		mixed := make([]*domain.Order, 0)
		for _, tag := range combo {
			mixed = append(mixed, byFlow[tag]...)
			delete(byFlow, tag)
		}
		result = append(result, Group{
			Config: domain.GroupConfig{
				ID:                newGroupID(routeType),
				RouteType:         routeType,
				Destinations:      entry.Centres,
				Centres:           entry.Centres,
				AllowedTruckTypes: entry.AllowedTruckTypes,
				FlowFilter:        &domain.FlowFilter{Tags: combo},
			},
			Orders: mixed,
		})
	}

	for tag, os := range byFlow {
		if len(os) == 0 {
			continue
		}
		t := tag
		result = append(result, Group{
			Config: domain.GroupConfig{
				ID:                newGroupID(routeType),
				RouteType:         routeType,
				Destinations:      entry.Centres,
				Centres:           entry.Centres,
				AllowedTruckTypes: entry.AllowedTruckTypes,
				FlowFilter:        &domain.FlowFilter{Tag: t},
			},
			Orders: os,
		})
	}

	if len(noFlow) > 0 {
		result = append(result, Group{
			Config: domain.GroupConfig{
				ID:                newGroupID(routeType),
				RouteType:         routeType,
				Destinations:      entry.Centres,
				Centres:           entry.Centres,
				AllowedTruckTypes: entry.AllowedTruckTypes,
				FlowFilter:        &domain.FlowFilter{NoFlow: true},
			},
			Orders: noFlow,
		})
	}

	return result
}

func allTagsPresent(byFlow map[string][]*domain.Order, combo []string) bool {
	for _, tag := range combo {
		if len(byFlow[tag]) == 0 {
			return false
		}
	}
	return len(combo) > 0
}
