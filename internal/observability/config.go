package observability

import (
	"time"

	"screener/internal/config"
)

// Settings is the resolved observability configuration
type Settings struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	TracingEnabled     bool
	MetricsEnabled     bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusSettings
	OTLP               config.OTLPConfig
}

// SettingsFromConfig resolves settings from the loaded configuration.
// A nil cfg yields a disabled configuration.
func SettingsFromConfig(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{ServiceName: "screener", ServiceVersion: version, SampleRate: 1.0}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obs.SampleRate
	if obs.Tracing.SampleRate > 0 && obs.Tracing.SampleRate < sampleRate {
		sampleRate = obs.Tracing.SampleRate
	}

	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return Settings{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		TracingEnabled:     obs.Tracing.Enabled,
		MetricsEnabled:     obs.Metrics.Enabled,
		SampleRate:         sampleRate,
		CollectionInterval: interval,
		Prometheus: PrometheusSettings{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP: obs.OTLP,
	}
}
