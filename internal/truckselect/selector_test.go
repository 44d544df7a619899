package truckselect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"truckload/internal/domain"
)

func TestDefaultSelector_Priority(t *testing.T) {
	allowed := []domain.TruckType{domain.TruckBackhaul, domain.TruckRamplaDirecta}
	got, ok := DefaultSelector{}.Select(Request{Allowed: allowed})
	assert.True(t, ok)
	assert.Equal(t, domain.TruckRamplaDirecta, got)
}

func TestNestleSelector_BackhaulPhaseRequiresBackhaulAllowed(t *testing.T) {
	allowed := []domain.TruckType{domain.TruckPaquetera}
	_, ok := NestleSelector{}.Select(Request{Phase: PhaseBackhaul, Allowed: allowed})
	assert.False(t, ok)

	allowed = []domain.TruckType{domain.TruckPaquetera, domain.TruckBackhaul}
	got, ok := NestleSelector{}.Select(Request{Phase: PhaseBackhaul, Allowed: allowed})
	assert.True(t, ok)
	assert.Equal(t, domain.TruckBackhaul, got)
}

func TestSMUSelector_AlviCRRPrefersSmallTrucks(t *testing.T) {
	allowed := []domain.TruckType{domain.TruckPaquetera, domain.TruckMediano}
	got, ok := SMUSelector{}.Select(Request{Allowed: allowed, Destination: "CD Alvi Norte", Flow: "CRR"})
	assert.True(t, ok)
	assert.Equal(t, domain.TruckMediano, got)
}

func TestSMUSelector_NonAlviUsesDefault(t *testing.T) {
	allowed := []domain.TruckType{domain.TruckPaquetera, domain.TruckMediano}
	got, ok := SMUSelector{}.Select(Request{Allowed: allowed, Destination: "CD Otro", Flow: "CRR"})
	assert.True(t, ok)
	assert.Equal(t, domain.TruckPaquetera, got)
}

func TestForClient_ResolvesKnownClients(t *testing.T) {
	_, isNestle := ForClient("Nestle").(NestleSelector)
	assert.True(t, isNestle)
	_, isSMU := ForClient("smu").(SMUSelector)
	assert.True(t, isSMU)
	_, isDefault := ForClient("unknown").(DefaultSelector)
	assert.True(t, isDefault)
}
