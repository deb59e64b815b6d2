// Package telemetry sets up the OpenTelemetry trace and metric providers
// used by transactional proxies and database instrumentation.
package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config telemetry 配置段
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Exporter       string        `mapstructure:"exporter"` // stdout, noop
	PrettyPrint    bool          `mapstructure:"pretty_print"`
	Sampler        SamplerConfig `mapstructure:"sampler"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

// SamplerConfig 采样配置
type SamplerConfig struct {
	Type  string  `mapstructure:"type"`  // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"` // 仅 trace_id_ratio 生效
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

// DefaultConfig 默认关闭
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "yogan-ioc",
		ServiceVersion: "0.1.0",
		Exporter:       "stdout",
		Sampler:        SamplerConfig{Type: "parent_based_always_on", Ratio: 1},
		Metrics:        MetricsConfig{ExportInterval: 30 * time.Second},
	}
}

// ApplyDefaults 填充默认值（原地修改）
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.ServiceName == "" {
		c.ServiceName = defaults.ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = defaults.ServiceVersion
	}
	if c.Exporter == "" {
		c.Exporter = defaults.Exporter
	}
	if c.Sampler.Type == "" {
		c.Sampler = defaults.Sampler
	}
	if c.Metrics.ExportInterval <= 0 {
		c.Metrics.ExportInterval = defaults.Metrics.ExportInterval
	}
}

// Validate implements validator.Validatable
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Exporter, validation.In("stdout", "noop")),
		validation.Field(&c.Sampler),
	)
}

// Validate implements validator.Validatable
func (s SamplerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.In("always_on", "always_off", "trace_id_ratio", "parent_based_always_on")),
		validation.Field(&s.Ratio, validation.Min(0.0), validation.Max(1.0)),
	)
}
