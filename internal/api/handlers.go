package api

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"truckload/internal/config"
	"truckload/internal/domain"
	"truckload/internal/ingest"
	"truckload/internal/obs"
	"truckload/internal/pipeline"
	"truckload/internal/truckselect"
)

// Semaphore bounds request concurrency to CPU-1 workers; a request that
// cannot acquire a slot within 3 seconds is answered 429.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore builds the process-wide semaphore sized to CPU count - 1
// (minimum 1).
func NewSemaphore() *Semaphore {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return &Semaphore{slots: make(chan struct{}, n)}
}

func (s *Semaphore) acquire(timeout time.Duration) bool {
	select {
	case s.slots <- struct{}{}:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Semaphore) release() {
	<-s.slots
}

const semaphoreAcquireTimeout = 3 * time.Second

// SetupRoutes wires the optimisation entry point and the postprocess
// operations, plus a health check.
func SetupRoutes(app *fiber.App, registry *config.Registry, sem *Semaphore, log *obs.Logger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/optimizar/:client/:channel", OptimizeHandler(registry, sem, log))
	app.Post("/postprocess/:op", PostprocessHandler(log))
}

// OptimizeHandler accepts a multipart spreadsheet plus vcuTarget and
// vcuTargetBH overrides, runs both pipelines, and returns {vcu, binpacking}.
func OptimizeHandler(registry *config.Registry, sem *Semaphore, log *obs.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client := c.Params("client")
		channel := c.Params("channel")

		clientCfg, err := registry.Client(client)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		clientCfg = clientCfg.ForChannel(channel)

		vcuTarget, err := parsePercentField(c, "vcuTarget")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		vcuTargetBH, err := parsePercentField(c, "vcuTargetBH")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if vcuTarget > 0 {
			applyVCUOverride(&clientCfg, domain.TruckPaquetera, vcuTarget)
			applyVCUOverride(&clientCfg, domain.TruckRamplaDirecta, vcuTarget)
		}
		if vcuTargetBH > 0 {
			applyVCUOverride(&clientCfg, domain.TruckBackhaul, vcuTargetBH)
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "missing spreadsheet upload")
		}
		f, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not open upload")
		}
		defer f.Close()

		orders, err := ingest.ParseOrders(f, c.FormValue("sheet"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !sem.acquire(semaphoreAcquireTimeout) {
			obs.SemaphoreSaturatedTotal.Inc()
			return fiber.NewError(fiber.StatusTooManyRequests, "concurrency limit reached, try again")
		}
		defer sem.release()

		deps := buildDeps(client, clientCfg, registry.Env())
		orderPtrs := toOrderPtrs(orders)

		hardDeadline := deps.TotalTimeout + 10*time.Second
		ctx, cancel := context.WithTimeout(c.Context(), hardDeadline)
		defer cancel()

		type outcome struct {
			vcu, bp pipeline.Result
		}
		done := make(chan outcome, 1)
		go func() {
			timer := prometheusTimer("vcu")
			vcuResult := pipeline.RunVCU(ctx, clonePedidos(orderPtrs), deps)
			timer()
			timer = prometheusTimer("binpacking")
			bpResult := pipeline.RunBinPacking(ctx, clonePedidos(orderPtrs), deps)
			timer()
			done <- outcome{vcu: vcuResult, bp: bpResult}
		}()

		select {
		case out := <-done:
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"vcu":         BuildResult(out.vcu, true),
				"binpacking":  BuildResult(out.bp, false),
			})
		case <-ctx.Done():
			log.Error("optimizar deadline exceeded", "client", client, "channel", channel)
			return fiber.NewError(fiber.StatusGatewayTimeout, "pipeline deadline exceeded")
		}
	}
}

func prometheusTimer(mode string) func() {
	start := time.Now()
	return func() {
		obs.PipelineDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
}

func parsePercentField(c *fiber.Ctx, field string) (float64, error) {
	raw := c.FormValue(field)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, field+" must be an integer")
	}
	if v < 1 || v > 100 {
		return 0, fiber.NewError(fiber.StatusBadRequest, field+" must be between 1 and 100")
	}
	return float64(v) / 100.0, nil
}

func applyVCUOverride(cfg *config.ClientConfig, truckType domain.TruckType, target float64) {
	cap, ok := cfg.TruckCapacities[truckType]
	if !ok {
		return
	}
	cap.MinVCU = target
	newCapacities := make(map[domain.TruckType]domain.TruckCapacity, len(cfg.TruckCapacities))
	for k, v := range cfg.TruckCapacities {
		newCapacities[k] = v
	}
	newCapacities[truckType] = cap
	cfg.TruckCapacities = newCapacities
}

func buildDeps(client string, cfg config.ClientConfig, env config.Env) pipeline.Deps {
	return pipeline.Deps{
		Client:             client,
		Routes:             cfg.Routes,
		Capacities:         cfg.TruckCapacities,
		StackingConfig:     cfg.StackingConfig,
		Budget:             cfg.Budget,
		Selector:           truckselect.ForClient(client),
		AgruparPorPO:       cfg.AgruparPorPO,
		ValidarAltura:      cfg.ValidarAltura,
		MaxOrdenes:         cfg.MaxOrdenes,
		MaxOrdenesCentre:   cfg.MaxOrdenesCentre,
		MaxTrucks:          env.MaxCamionesCPSat,
		NormalWorkers:      env.ThreadWorkersNormal,
		ValidationWorkers:  env.GroupMaxWorkers,
		AdherenciaBackhaul: cfg.AdherenciaBackhaul,
		TotalTimeout:       cfg.Budget.TotalTimeout,
	}
}

func toOrderPtrs(orders []domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}

// clonePedidos gives each pipeline invocation its own Order pointers, since
// AgregarPedidos mutates AssignedTruckID/AssignedGroupID in place and the
// VCU and bin-packing passes must not interfere with each other.
func clonePedidos(orders []*domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		cp := *o
		cp.AssignedTruckID = ""
		cp.AssignedGroupID = ""
		out[i] = &cp
	}
	return out
}
