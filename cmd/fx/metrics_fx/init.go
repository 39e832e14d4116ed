package metrics_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"grassmap/internal/metrics"
)

var Module = fx.Provide(provideMetrics)

func provideMetrics() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}
