// Package metrics contains prometheus collectors for effects and devices.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wled_effects"

var (
	// Device requests.
	deviceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "requests_total",
		Help:      "HTTP requests sent to WLED devices",
	}, []string{"host", "method", "result"})

	deviceRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "retries_total",
		Help:      "Retried HTTP requests",
	}, []string{"host"})

	deviceBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "led_batches_total",
		Help:      "Per-LED requests sent, one per batch",
	}, []string{"host"})

	deviceRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests sent to WLED devices",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"host"})

	circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "circuit_open",
		Help:      "Circuit breaker state: 0 closed, 0.5 half-open, 1 open",
	}, []string{"host"})

	cachedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "connection",
		Name:      "cached_clients",
		Help:      "Number of cached device clients",
	})

	// Effects.
	effectCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "effect",
		Name:      "commands_total",
		Help:      "Device commands issued by effects",
	}, []string{"effect", "result"})

	effectFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "effect",
		Name:      "frames_total",
		Help:      "Render steps executed by effects",
	}, []string{"effect", "result"})

	effectFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "effect",
		Name:      "segment_fallbacks_total",
		Help:      "Per-LED frames sent as a single segment color",
	}, []string{"effect"})

	effectRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "effect",
		Name:      "running",
		Help:      "Whether effect render loop is running",
	}, []string{"effect"})

	triggersFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "trigger",
		Name:      "fired_total",
		Help:      "Fired triggers",
	}, []string{"effect", "type"})
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Returns result label.
func result(ok bool) string {
	if ok {
		return ResultSuccess
	}

	return ResultFailure
}

// ObserveDeviceRequest records a single device request.
func ObserveDeviceRequest(host string, method string, ok bool, seconds float64) {
	deviceRequests.WithLabelValues(host, method, result(ok)).Inc()
	deviceRequestSeconds.WithLabelValues(host).Observe(seconds)
}

// IncrementDeviceRetries records retried request.
func IncrementDeviceRetries(host string) {
	deviceRetries.WithLabelValues(host).Inc()
}

// IncrementLEDBatches records sent per-LED batch.
func IncrementLEDBatches(host string) {
	deviceBatches.WithLabelValues(host).Inc()
}

// SetCircuitState records circuit breaker state.
func SetCircuitState(host string, state string) {
	v := 0.0
	switch state {
	case "open":
		v = 1
	case "half_open":
		v = 0.5
	}

	circuitState.WithLabelValues(host).Set(v)
}

// SetCachedClients records size of the connection cache.
func SetCachedClients(count int) {
	cachedClients.Set(float64(count))
}

// IncrementEffectCommands records device command issued by effect.
func IncrementEffectCommands(effect string, ok bool) {
	effectCommands.WithLabelValues(effect, result(ok)).Inc()
}

// IncrementEffectFrames records render step.
func IncrementEffectFrames(effect string, ok bool) {
	effectFrames.WithLabelValues(effect, result(ok)).Inc()
}

// IncrementEffectFallbacks records segment fallback.
func IncrementEffectFallbacks(effect string) {
	effectFallbacks.WithLabelValues(effect).Inc()
}

// SetEffectRunning records effect loop state.
func SetEffectRunning(effect string, running bool) {
	v := 0.0
	if running {
		v = 1
	}

	effectRunning.WithLabelValues(effect).Set(v)
}

// IncrementTriggers records fired trigger.
func IncrementTriggers(effect string, triggerType string) {
	triggersFired.WithLabelValues(effect, triggerType).Inc()
}
