package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ModerationDecisions counts moderation outcomes by decision.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_moderation_decisions_total",
		Help: "Total number of post moderation decisions",
	}, []string{"decision"})

	// RelationToggles counts social graph toggles by relation and resulting state.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_relation_toggles_total",
		Help: "Total number of follow/like toggles by resulting state",
	}, []string{"relation", "state"})
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus HTTP middleware for the given service
// name. The collectors live in the default registry, so the instance is
// created once and shared by later callers.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
