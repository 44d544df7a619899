// Package truckselect implements the truck-type selector: given a route
// and the truck types a route entry allows, pick one per the client's
// policy.
package truckselect

import (
	"strings"

	"truckload/internal/domain"
)

// Phase is which stage of the VCU pipeline is asking for a truck type;
// only the Nestlé-family selector cares about it.
type Phase int

const (
	PhaseNestle Phase = iota
	PhaseBackhaul
)

// Request carries everything a Selector needs to pick one truck type.
type Request struct {
	RouteType     domain.RouteType
	Allowed       []domain.TruckType
	Phase         Phase
	Destination   string
	Flow          string
}

// Selector picks one truck type per route/phase; one implementation per
// client policy.
type Selector interface {
	Select(req Request) (domain.TruckType, bool)
}

// DefaultSelector implements the fallback priority every client without a
// bespoke rule uses: paquetera > rampla_directa > backhaul.
type DefaultSelector struct{}

var defaultPriority = []domain.TruckType{
	domain.TruckPaquetera,
	domain.TruckRamplaDirecta,
	domain.TruckBackhaul,
}

func (DefaultSelector) Select(req Request) (domain.TruckType, bool) {
	return firstAllowed(defaultPriority, req.Allowed)
}

func firstAllowed(priority, allowed []domain.TruckType) (domain.TruckType, bool) {
	allowedSet := make(map[domain.TruckType]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}
	for _, t := range priority {
		if allowedSet[t] {
			return t, true
		}
	}
	return 0, false
}

// NestleSelector implements the cencosud/nestle family rule: during
// the "nestle" phase pick the first non-backhaul Nestlé type allowed;
// during the "backhaul" phase pick backhaul if present.
type NestleSelector struct{}

var nestleNonBackhaulPriority = []domain.TruckType{
	domain.TruckPaquetera,
	domain.TruckRamplaDirecta,
	domain.TruckMediano,
	domain.TruckPequeno,
}

func (NestleSelector) Select(req Request) (domain.TruckType, bool) {
	if req.Phase == PhaseBackhaul {
		if contains(req.Allowed, domain.TruckBackhaul) {
			return domain.TruckBackhaul, true
		}
		return 0, false
	}
	return firstAllowed(nestleNonBackhaulPriority, req.Allowed)
}

// SMUSelector implements the SMU rule: a CRR-flow order bound for a
// destination containing "Alvi" prefers the smaller truck types first.
type SMUSelector struct{}

var smuAlviCRRPriority = []domain.TruckType{
	domain.TruckPequeno,
	domain.TruckMediano,
	domain.TruckPaquetera,
	domain.TruckRamplaDirecta,
}

func (SMUSelector) Select(req Request) (domain.TruckType, bool) {
	if strings.Contains(req.Destination, "Alvi") && req.Flow == "CRR" {
		return firstAllowed(smuAlviCRRPriority, req.Allowed)
	}
	return firstAllowed(defaultPriority, req.Allowed)
}

// WalmartSelector uses the default priority; the per-centre/total order
// caps for route type multi_cd are enforced by the solver model
// (Model.MaxOrdersPerCentre/MaxOrdersPerTruck), not by truck-type choice.
type WalmartSelector struct{}

func (WalmartSelector) Select(req Request) (domain.TruckType, bool) {
	return firstAllowed(defaultPriority, req.Allowed)
}

func contains(list []domain.TruckType, t domain.TruckType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

