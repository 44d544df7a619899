package domain

// GroupConfig describes one disjoint optimisation sub-problem produced by
// the group generator.
type GroupConfig struct {
	ID                string
	RouteType         RouteType
	Destinations      []string
	Centres           []string
	FlowFilter        *FlowFilter
	AllowedTruckTypes []TruckType
}

// FlowFilter selects which order-flow tags a route-table entry accepts.
// Exactly one of Tag / Tags / NoFlow is meaningful at a time.
type FlowFilter struct {
	Tag    string   // single tag
	Tags   []string // list of tags
	NoFlow bool     // the "no-flow" sentinel: order must lack a flow tag
}

// Matches reports whether an order's flow tag satisfies this filter.
func (f *FlowFilter) Matches(order Order) bool {
	if f == nil {
		return true
	}
	if f.NoFlow {
		return !order.HasFlow()
	}
	if f.Tag != "" {
		return order.FlowOrEmpty() == f.Tag
	}
	if len(f.Tags) > 0 {
		for _, t := range f.Tags {
			if order.FlowOrEmpty() == t {
				return true
			}
		}
		return false
	}
	return true
}

// RouteTableEntry is one row of a client's RUTAS_POSIBLES table.
type RouteTableEntry struct {
	Origins           []string
	Centres           []string
	AllowedTruckTypes []TruckType
	FlowFilter        *FlowFilter
}

// Matches reports whether an order matches this route-table entry: its
// origin is in the origin list AND its destination centre is in the centre
// list AND the flow filter (if any) accepts it.
func (e RouteTableEntry) Matches(order Order) bool {
	if !contains(e.Origins, order.OriginWarehouse) {
		return false
	}
	if !contains(e.Centres, order.DestinationCentre) {
		return false
	}
	return e.FlowFilter.Matches(order)
}

func contains(list []string, needle string) bool {
	for _, v := range list {
		if v == needle {
			return true
		}
	}
	return false
}
