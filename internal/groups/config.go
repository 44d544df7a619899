// Package groups implements the group generator: it partitions a batch of
// orders into disjoint optimisation sub-problems according to a client's
// route tables.
package groups

import (
	"time"

	"github.com/google/uuid"

	"truckload/internal/domain"
)

// Mode selects which route-type precedence governs partitioning.
type Mode int

const (
	ModeVCU Mode = iota
	ModeBinPacking
)

// RouteConfig is one client's RUTAS_POSIBLES table plus its order-flow and
// mixed-flow configuration.
type RouteConfig struct {
	Routes               map[domain.RouteType][]domain.RouteTableEntry
	BinpackingRouteTypes []domain.RouteType
	UsaOC                bool
	MixGrupos            [][]string // ordered flow-tag combinations to merge
}

// vcuPrecedence is the fixed route-type processing order for VCU mode:
// multi_ce_prioridad -> normal -> multi_ce -> multi_cd -> backhaul.
var vcuPrecedence = []domain.RouteType{
	domain.RouteMultiCEPriority,
	domain.RouteNormal,
	domain.RouteMultiCE,
	domain.RouteMultiCD,
	domain.RouteBackhaulOnly,
}

func (c RouteConfig) precedence(mode Mode) []domain.RouteType {
	if mode == ModeBinPacking && len(c.BinpackingRouteTypes) > 0 {
		return c.BinpackingRouteTypes
	}
	return vcuPrecedence
}

// Group is one (GroupConfig, orders) pair the generator produced.
type Group struct {
	Config     domain.GroupConfig
	Orders     []*domain.Order
	TimeBudget time.Duration
}

func newGroupID(routeType domain.RouteType) string {
	return routeType.String() + "-" + uuid.NewString()[:8]
}
