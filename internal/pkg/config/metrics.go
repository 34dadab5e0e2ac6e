package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics reports how the last configuration load went, under the
// <component>_config_* names.
type ConfigMetrics struct {
	Fallbacks      *prometheus.CounterVec
	LoadedAt       prometheus.Gauge
	FallbackActive prometheus.Gauge
}

// NewConfigMetrics registers on the default registry; call it once per
// component.
func NewConfigMetrics(component string) *ConfigMetrics {
	return newConfigMetrics(prometheus.DefaultRegisterer, component)
}

func newConfigMetrics(reg prometheus.Registerer, component string) *ConfigMetrics {
	f := promauto.With(reg)
	return &ConfigMetrics{
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Environment keys that were invalid and fell back to their default.",
		}, []string{"key"}),
		LoadedAt: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix time of the last configuration load.",
		}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 while any configuration key is running on its default after a validation failure.",
		}),
	}
}

func (m *ConfigMetrics) fellBack(key string) { m.Fallbacks.WithLabelValues(key).Inc() }

func (m *ConfigMetrics) loaded(anyFallback bool) {
	m.LoadedAt.SetToCurrentTime()
	if anyFallback {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}
