package config

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultName is used when a cache is created without a name.
	DefaultName = "default"
	// DefaultSweepInterval 默認的閒置清理間隔
	DefaultSweepInterval = 5 * time.Second
	// DefaultCallTimeout bounds synchronous calls that carry no deadline of their own.
	DefaultCallTimeout = 5 * time.Second
)

var (
	ErrEmptyName            = errors.New("cache name must not be empty")
	ErrInvalidSweepInterval = errors.New("sweep interval must be greater than 0")
	ErrInvalidCallTimeout   = errors.New("call timeout must be greater than 0")
	ErrNilLogger            = errors.New("logger must not be nil")
	ErrNilTracerProvider    = errors.New("tracer provider must not be nil")
	ErrNilMeterProvider     = errors.New("meter provider must not be nil")
)

// Config 快取實例的配置
type Config struct {
	// Name identifies the cache in logs, spans and metric attributes.
	Name string
	// SweepInterval is how long the actor must stay idle before it sweeps expired entries.
	SweepInterval time.Duration
	// CallTimeout bounds Get, Stats and CleanupExpired when the caller's context has no deadline.
	CallTimeout time.Duration

	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Option 函數類型
type Option func(*Config) error

// NewConfig 創建一個默認的 Config，允許覆蓋特定參數
func NewConfig(options ...Option) (*Config, error) {
	cfg := &Config{
		Name:           DefaultName,
		SweepInterval:  DefaultSweepInterval,
		CallTimeout:    DefaultCallTimeout,
		Logger:         zap.NewNop(),
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
	}

	// 應用所有選項
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// WithName 設置快取名稱
func WithName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return ErrEmptyName
		}
		c.Name = name
		return nil
	}
}

// WithSweepInterval 設置閒置清理間隔
func WithSweepInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidSweepInterval
		}
		c.SweepInterval = d
		return nil
	}
}

// WithCallTimeout 設置同步呼叫的默認超時
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidCallTimeout
		}
		c.CallTimeout = d
		return nil
	}
}

// WithLogger 設置自定義 Logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrNilLogger
		}
		c.Logger = logger
		return nil
	}
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) error {
		if tp == nil {
			return ErrNilTracerProvider
		}
		c.TracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the provider the stats counters are registered on.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) error {
		if mp == nil {
			return ErrNilMeterProvider
		}
		c.MeterProvider = mp
		return nil
	}
}
