// Package api is the HTTP entry point: it is explicitly outside the
// core and
// exists only to receive a spreadsheet, run the pipelines, and serialise
// the results.
package api

import (
	"truckload/internal/domain"
	"truckload/internal/pipeline"
)

// OrderDTO is the wire shape of one Order in a Result: identifiers,
// dimensions, category flags, stackability counts, and (when assigned)
// truck, group, route type, and truck type.
type OrderDTO struct {
	ID                    string  `json:"id"`
	PurchaseOrderID       string  `json:"purchase_order_id,omitempty"`
	OriginWarehouse       string  `json:"origin_warehouse"`
	DestinationCentre     string  `json:"destination_centre"`
	DestinationExpedition string  `json:"destination_expedition,omitempty"`
	Flow                  string  `json:"flujo_oc,omitempty"`
	WeightKg              float64 `json:"weight_kg"`
	VolumeM3              float64 `json:"volume_m3"`
	PalletCount           float64 `json:"pallet_count"`
	Valuation             float64 `json:"valuation"`
	Valuable              bool    `json:"valuable"`
	ColdChain             bool    `json:"cold_chain"`
	Promotional           bool    `json:"promotional"`
	SmallVolume           bool    `json:"small_volume"`
	DirectedLot           bool    `json:"directed_lot"`
	Chocolates            bool    `json:"chocolates"`
	Base                  float64 `json:"base"`
	Superior              float64 `json:"superior"`
	Flexible              float64 `json:"flexible"`
	NoApilable            float64 `json:"no_apilable"`
	SiMismo               float64 `json:"si_mismo"`

	AssignedTruckID string `json:"camion,omitempty"`
	AssignedGroupID string `json:"grupo,omitempty"`
	RouteType       string `json:"tipo_ruta,omitempty"`
	TruckType       string `json:"tipo_camion,omitempty"`
}

func orderToDTO(o *domain.Order, rt domain.RouteType, tt domain.TruckType, hasTruck bool) OrderDTO {
	dto := OrderDTO{
		ID:                    o.ID,
		PurchaseOrderID:       o.PurchaseOrderID,
		OriginWarehouse:       o.OriginWarehouse,
		DestinationCentre:     o.DestinationCentre,
		DestinationExpedition: o.DestinationExpedition,
		Flow:                  o.FlowOrEmpty(),
		WeightKg:              o.WeightKg,
		VolumeM3:              o.VolumeM3,
		PalletCount:           o.PalletCount,
		Valuation:             o.Valuation,
		Valuable:              o.Valuable,
		ColdChain:             o.ColdChain,
		Promotional:           o.Promotional,
		SmallVolume:           o.SmallVolume,
		DirectedLot:           o.DirectedLot,
		Chocolates:            o.Chocolates,
		Base:                  o.Counts.Base,
		Superior:              o.Counts.Superior,
		Flexible:              o.Counts.Flexible,
		NoApilable:            o.Counts.NoApilable,
		SiMismo:               o.Counts.SiMismo,
		AssignedTruckID:       o.AssignedTruckID,
		AssignedGroupID:       o.AssignedGroupID,
	}
	if hasTruck {
		dto.RouteType = rt.String()
		dto.TruckType = tt.String()
	}
	return dto
}

// TruckDTO is the wire shape of one Truck.
type TruckDTO struct {
	ID           string     `json:"id"`
	GroupID      string     `json:"grupo"`
	RouteType    string     `json:"tipo_ruta"`
	TruckType    string     `json:"tipo_camion"`
	CD           []string   `json:"cd"`
	CE           []string   `json:"ce"`
	Orders       []OrderDTO `json:"pedidos"`
	VCUVol       float64    `json:"vcu_vol"`
	VCUPeso      float64    `json:"vcu_peso"`
	VCUMax       float64    `json:"vcu_max"`
	PalletsConf  float64    `json:"pallets_conf"`
	PosTotal     int        `json:"pos_total"`
	ValorTotal   float64    `json:"valor_total"`
	Chocolates   bool       `json:"chocolates"`
	LayoutInfo   *LayoutDTO `json:"layout_info,omitempty"`
}

// LayoutDTO mirrors domain.LayoutInfo for the wire.
type LayoutDTO struct {
	AlturaValidada     bool     `json:"altura_validada"`
	Errors             []string `json:"errors,omitempty"`
	PosicionesUsadas   int      `json:"posiciones_usadas"`
	FragmentosFallidos []string `json:"fragmentos_fallidos,omitempty"`
}

func truckToDTO(t *domain.Truck) TruckDTO {
	chocolates := false
	orders := make([]OrderDTO, 0, len(t.Orders))
	for _, o := range t.Orders {
		if o.Chocolates {
			chocolates = true
		}
		orders = append(orders, orderToDTO(o, t.RouteType, t.TruckType, true))
	}

	dto := TruckDTO{
		ID:          t.ID,
		GroupID:     t.GroupID,
		RouteType:   t.RouteType.String(),
		TruckType:   t.TruckType.String(),
		CD:          t.Origins,
		CE:          t.Destinations,
		Orders:      orders,
		VCUVol:      t.VCUVol(),
		VCUPeso:     t.VCUPeso(),
		VCUMax:      t.VCUMax(),
		PalletsConf: t.TotalPallets(),
		PosTotal:    t.PosTotal,
		ValorTotal:  t.TotalValuation(),
		Chocolates:  chocolates,
	}
	if t.LayoutInfo != nil {
		posUsed := 0
		if t.LayoutInfo.Layout != nil {
			posUsed = t.LayoutInfo.Layout.UsedPositions()
		}
		dto.LayoutInfo = &LayoutDTO{
			AlturaValidada:     t.LayoutInfo.AlturaValidada,
			Errors:             t.LayoutInfo.Errors,
			PosicionesUsadas:   posUsed,
			FragmentosFallidos: t.LayoutInfo.FragmentosFallidos,
		}
	}
	return dto
}

// Validacion is the validation-counter block of Statistics.
type Validacion struct {
	CamionesValidos     int     `json:"camiones_validos"`
	CamionesInvalidos   int     `json:"camiones_invalidos"`
	CamionesNoValidados int     `json:"camiones_no_validados"`
	TasaValidacion      float64 `json:"tasa_validacion"`
}

// Statistics is the estadisticas block of a Result.
type Statistics struct {
	CantidadCamiones       int         `json:"cantidad_camiones"`
	CantidadCamionesNormal int         `json:"cantidad_camiones_normal"`
	CantidadCamionesBH     int         `json:"cantidad_camiones_bh"`
	CantidadPedidosAsignados int       `json:"cantidad_pedidos_asignados"`
	TotalPedidos           int         `json:"total_pedidos"`
	PromedioVCU            float64     `json:"promedio_vcu"`
	PromedioVCUNormal      float64     `json:"promedio_vcu_normal"`
	PromedioVCUBH          float64     `json:"promedio_vcu_bh"`
	Valorizado             float64     `json:"valorizado"`
	Validacion             *Validacion `json:"validacion,omitempty"`
}

// Result is the top-level response shape: camiones, pedidos_no_incluidos,
// estadisticas.
type Result struct {
	Camiones          []TruckDTO `json:"camiones"`
	PedidosNoIncluidos []OrderDTO `json:"pedidos_no_incluidos"`
	Estadisticas      Statistics `json:"estadisticas"`
}

// BuildResult converts a pipeline.Result into the wire Result, computing
// the statistics block. Every order lands in exactly one truck or the
// not-included list.
func BuildResult(r pipeline.Result, includeValidation bool) Result {
	trucks := make([]TruckDTO, 0, len(r.Trucks))
	orders := make([]OrderDTO, 0, len(r.NotIncluded))

	var vcuSum, vcuNormalSum, vcuBHSum, valorizado float64
	var normalCount, bhCount, assignedCount int
	var validCount, invalidCount, unvalidatedCount int

	for _, t := range r.Trucks {
		trucks = append(trucks, truckToDTO(t))
		vcuSum += t.VCUMax()
		valorizado += t.TotalValuation()
		assignedCount += len(t.Orders)
		if t.TruckType == domain.TruckBackhaul {
			bhCount++
			vcuBHSum += t.VCUMax()
		} else {
			normalCount++
			vcuNormalSum += t.VCUMax()
		}
		switch {
		case t.LayoutInfo == nil:
			unvalidatedCount++
		case t.LayoutInfo.AlturaValidada:
			validCount++
		default:
			invalidCount++
		}
	}

	for _, o := range r.NotIncluded {
		orders = append(orders, orderToDTO(o, 0, 0, false))
	}

	total := len(r.Trucks)
	avg := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	stats := Statistics{
		CantidadCamiones:         total,
		CantidadCamionesNormal:   normalCount,
		CantidadCamionesBH:       bhCount,
		CantidadPedidosAsignados: assignedCount,
		TotalPedidos:             assignedCount + len(r.NotIncluded),
		PromedioVCU:              avg(vcuSum, total),
		PromedioVCUNormal:        avg(vcuNormalSum, normalCount),
		PromedioVCUBH:            avg(vcuBHSum, bhCount),
		Valorizado:               valorizado,
	}
	if includeValidation {
		validatedTotal := validCount + invalidCount
		rate := 0.0
		if validatedTotal > 0 {
			rate = float64(validCount) / float64(validatedTotal)
		}
		stats.Validacion = &Validacion{
			CamionesValidos:     validCount,
			CamionesInvalidos:   invalidCount,
			CamionesNoValidados: unvalidatedCount,
			TasaValidacion:      rate,
		}
	}

	return Result{Camiones: trucks, PedidosNoIncluidos: orders, Estadisticas: stats}
}
