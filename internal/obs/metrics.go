package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineDuration tracks wall-clock time of one H/I pipeline run.
	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "truckload_pipeline_duration_seconds",
		Help:    "Duration of one optimisation pipeline run",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"mode"})

	// GroupsGenerated counts groups produced by the group generator.
	GroupsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truckload_groups_generated_total",
		Help: "Total groups produced by the group generator",
	}, []string{"client", "mode"})

	// TrucksProduced counts trucks assembled per run, by truck type.
	TrucksProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truckload_trucks_produced_total",
		Help: "Total trucks produced, by truck type",
	}, []string{"client", "truck_type"})

	// OrdersNotIncluded counts orders that ended in the not-included pool.
	OrdersNotIncluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truckload_orders_not_included_total",
		Help: "Total orders that ended in the not-included pool",
	}, []string{"client"})

	// ValidationCycleIterations tracks how many recovery rounds a
	// validation cycle needed.
	ValidationCycleIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "truckload_validation_adjust_iterations",
		Help:    "Recovery rounds consumed per validation cycle",
		Buckets: prometheus.LinearBuckets(0, 1, 4),
	})

	// SemaphoreSaturatedTotal counts HTTP requests rejected because the
	// concurrency semaphore was saturated.
	SemaphoreSaturatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truckload_semaphore_saturated_total",
		Help: "Total requests rejected because the concurrency semaphore was saturated",
	})
)
