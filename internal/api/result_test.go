package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckload/internal/domain"
	"truckload/internal/pipeline"
)

func testTruck(id string, truckType domain.TruckType, capacity domain.TruckCapacity, orders ...*domain.Order) *domain.Truck {
	t := domain.NewTruck(id, domain.RouteNormal, truckType, capacity)
	if err := t.AgregarPedidos(orders); err != nil {
		panic(err)
	}
	return t
}

func testCapacityFor(weight, volume float64) domain.TruckCapacity {
	return domain.TruckCapacity{WeightKg: weight, VolumeM3: volume, MaxPositions: 30, MaxPallets: 30}
}

func testOrderFor(id string, weight, volume, pallets float64) *domain.Order {
	o, err := domain.NewOrder(domain.Order{
		ID: id, WeightKg: weight, VolumeM3: volume, PalletCount: pallets,
		Counts: domain.StackCounts{Base: pallets},
	})
	if err != nil {
		panic(err)
	}
	return &o
}

func TestBuildResult_PartitionsOrdersAcrossTrucksAndNotIncluded(t *testing.T) {
	cap := testCapacityFor(20000, 70)
	truck := testTruck("T1", domain.TruckPaquetera, cap, testOrderFor("A", 1000, 5, 1))
	notIncluded := []*domain.Order{testOrderFor("B", 50, 1, 1)}

	res := BuildResult(pipeline.Result{Trucks: []*domain.Truck{truck}, NotIncluded: notIncluded}, false)

	require.Len(t, res.Camiones, 1)
	require.Len(t, res.PedidosNoIncluidos, 1)
	assert.Equal(t, "A", res.Camiones[0].Orders[0].ID)
	assert.Equal(t, "B", res.PedidosNoIncluidos[0].ID)
	assert.Equal(t, 2, res.Estadisticas.TotalPedidos)
	assert.Equal(t, 1, res.Estadisticas.CantidadPedidosAsignados)
	assert.Nil(t, res.Estadisticas.Validacion)
}

func TestBuildResult_SplitsNormalAndBackhaulAverages(t *testing.T) {
	cap := testCapacityFor(20000, 70)
	normal := testTruck("T1", domain.TruckPaquetera, cap, testOrderFor("A", 10000, 35, 1))
	backhaul := testTruck("T2", domain.TruckBackhaul, cap, testOrderFor("B", 2000, 7, 1))

	res := BuildResult(pipeline.Result{Trucks: []*domain.Truck{normal, backhaul}}, true)

	assert.Equal(t, 1, res.Estadisticas.CantidadCamionesNormal)
	assert.Equal(t, 1, res.Estadisticas.CantidadCamionesBH)
	require.NotNil(t, res.Estadisticas.Validacion)
	assert.Equal(t, 2, res.Estadisticas.Validacion.CamionesNoValidados)
}

func TestBuildResult_ValidationCounters(t *testing.T) {
	cap := testCapacityFor(20000, 70)
	validTruck := testTruck("T1", domain.TruckPaquetera, cap, testOrderFor("A", 1000, 5, 1))
	validTruck.LayoutInfo = &domain.LayoutInfo{AlturaValidada: true}
	invalidTruck := testTruck("T2", domain.TruckPaquetera, cap, testOrderFor("B", 1000, 5, 1))
	invalidTruck.LayoutInfo = &domain.LayoutInfo{AlturaValidada: false}

	res := BuildResult(pipeline.Result{Trucks: []*domain.Truck{validTruck, invalidTruck}}, true)

	require.NotNil(t, res.Estadisticas.Validacion)
	assert.Equal(t, 1, res.Estadisticas.Validacion.CamionesValidos)
	assert.Equal(t, 1, res.Estadisticas.Validacion.CamionesInvalidos)
	assert.Equal(t, 0.5, res.Estadisticas.Validacion.TasaValidacion)
}
