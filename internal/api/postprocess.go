package api

import (
	"github.com/gofiber/fiber/v2"

	"truckload/internal/domain"
	"truckload/internal/obs"
)

// PostprocessRequest is the JSON body shape for every /postprocess/{op}
// call: the current state plus operation-specific parameters. Only
// the fields a given op reads are required.
type PostprocessRequest struct {
	Camiones           []TruckDTO `json:"camiones"`
	PedidosNoIncluidos []OrderDTO `json:"pedidos_no_incluidos"`

	OrderIDs    []string `json:"order_ids,omitempty"`
	FromTruckID string   `json:"from_truck_id,omitempty"`
	ToTruckID   string   `json:"to_truck_id,omitempty"`

	NewTruck *TruckDTO `json:"new_truck,omitempty"`
	TruckID  string    `json:"truck_id,omitempty"`
}

// PostprocessHandler dispatches the four manual-adjustment operations:
// move_orders, add_truck, delete_truck, compute_stats. Each mutates the
// posted state and returns it re-serialised with recomputed statistics.
// This boundary operates on the wire DTOs directly rather than
// reconstructing full domain aggregates.
func PostprocessHandler(log *obs.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op := c.Params("op")
		var req PostprocessRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}

		switch op {
		case "move_orders":
			return c.JSON(moveOrders(req))
		case "add_truck":
			return c.JSON(addTruck(req))
		case "delete_truck":
			return c.JSON(deleteTruck(req))
		case "compute_stats":
			return c.JSON(computeStats(req))
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown postprocess operation "+op)
		}
	}
}

// moveOrders relocates the named orders from one truck (or the
// not-included pool, via an empty FromTruckID) to another truck (or back
// to the pool, via an empty ToTruckID).
func moveOrders(req PostprocessRequest) fiber.Map {
	wanted := make(map[string]bool, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		wanted[id] = true
	}

	var moving []OrderDTO
	trucks := make([]TruckDTO, 0, len(req.Camiones))
	for _, t := range req.Camiones {
		if t.ID != req.FromTruckID {
			trucks = append(trucks, t)
			continue
		}
		kept := t.Orders[:0:0]
		for _, o := range t.Orders {
			if wanted[o.ID] {
				moving = append(moving, o)
				continue
			}
			kept = append(kept, o)
		}
		t.Orders = kept
		t.PosTotal = recomputePositions(kept)
		trucks = append(trucks, t)
	}

	notIncluded := req.PedidosNoIncluidos
	if req.FromTruckID == "" {
		kept := notIncluded[:0:0]
		for _, o := range notIncluded {
			if wanted[o.ID] {
				moving = append(moving, o)
				continue
			}
			kept = append(kept, o)
		}
		notIncluded = kept
	}

	if req.ToTruckID == "" {
		notIncluded = append(notIncluded, moving...)
	} else {
		for i := range trucks {
			if trucks[i].ID == req.ToTruckID {
				for _, o := range moving {
					o.AssignedTruckID = trucks[i].ID
					trucks[i].Orders = append(trucks[i].Orders, o)
				}
				trucks[i].PosTotal = recomputePositions(trucks[i].Orders)
			}
		}
	}

	return statsResponse(trucks, notIncluded)
}

func addTruck(req PostprocessRequest) fiber.Map {
	trucks := append([]TruckDTO{}, req.Camiones...)
	if req.NewTruck != nil {
		trucks = append(trucks, *req.NewTruck)
	}
	return statsResponse(trucks, req.PedidosNoIncluidos)
}

func deleteTruck(req PostprocessRequest) fiber.Map {
	trucks := make([]TruckDTO, 0, len(req.Camiones))
	notIncluded := append([]OrderDTO{}, req.PedidosNoIncluidos...)
	for _, t := range req.Camiones {
		if t.ID == req.TruckID {
			for _, o := range t.Orders {
				o.AssignedTruckID = ""
				o.AssignedGroupID = ""
				notIncluded = append(notIncluded, o)
			}
			continue
		}
		trucks = append(trucks, t)
	}
	return statsResponse(trucks, notIncluded)
}

func computeStats(req PostprocessRequest) fiber.Map {
	return statsResponse(req.Camiones, req.PedidosNoIncluidos)
}

func recomputePositions(orders []OrderDTO) int {
	var counts domain.StackCounts
	for _, o := range orders {
		counts = counts.Add(domain.StackCounts{
			Base:       o.Base,
			Superior:   o.Superior,
			Flexible:   o.Flexible,
			NoApilable: o.NoApilable,
			SiMismo:    o.SiMismo,
		})
	}
	return int(counts.EstimatedPositions() + 0.5)
}

func statsResponse(trucks []TruckDTO, notIncluded []OrderDTO) fiber.Map {
	var vcuSum, vcuNormalSum, vcuBHSum, valorizado float64
	var normalCount, bhCount, assigned int
	for _, t := range trucks {
		vcuSum += t.VCUMax
		valorizado += t.ValorTotal
		assigned += len(t.Orders)
		if t.TruckType == "backhaul" {
			bhCount++
			vcuBHSum += t.VCUMax
		} else {
			normalCount++
			vcuNormalSum += t.VCUMax
		}
	}
	avg := func(sum float64, n int) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}
	stats := Statistics{
		CantidadCamiones:         len(trucks),
		CantidadCamionesNormal:   normalCount,
		CantidadCamionesBH:       bhCount,
		CantidadPedidosAsignados: assigned,
		TotalPedidos:             assigned + len(notIncluded),
		PromedioVCU:              avg(vcuSum, len(trucks)),
		PromedioVCUNormal:        avg(vcuNormalSum, normalCount),
		PromedioVCUBH:            avg(vcuBHSum, bhCount),
		Valorizado:               valorizado,
	}
	return fiber.Map{
		"camiones":             trucks,
		"pedidos_no_incluidos": notIncluded,
		"estadisticas":         stats,
	}
}
