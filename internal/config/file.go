package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the encoding of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrEmptyPath         = errors.New("config path must not be empty")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrLoadFailed        = errors.New("failed to load config")
	ErrParseFailed       = errors.New("failed to parse config")
)

// File is the on-disk shape of a cache configuration.
//
//	cache:
//	  name: sessions
//	  sweep_interval: 5s
//	  call_timeout: 2s
//	log:
//	  level: info
//	  development: false
type File struct {
	Cache CacheSection `koanf:"cache"`
	Log   LogSection   `koanf:"log"`
}

// CacheSection 快取相關配置
type CacheSection struct {
	Name          string        `koanf:"name"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	CallTimeout   time.Duration `koanf:"call_timeout"`
}

// LogSection 日誌相關配置
type LogSection struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// Load reads a YAML or JSON file, picking the parser from the extension.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return LoadBytes(data, format)
}

// LoadBytes parses raw configuration data. Empty data yields a zero File.
func LoadBytes(data []byte, format Format) (*File, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	f := &File{}
	if err := k.UnmarshalWithConf("", f, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return f, nil
}

// Options converts the file into config options. Zero values keep the defaults.
func (f *File) Options() []Option {
	var opts []Option
	if f.Cache.Name != "" {
		opts = append(opts, WithName(f.Cache.Name))
	}
	if f.Cache.SweepInterval != 0 {
		opts = append(opts, WithSweepInterval(f.Cache.SweepInterval))
	}
	if f.Cache.CallTimeout != 0 {
		opts = append(opts, WithCallTimeout(f.Cache.CallTimeout))
	}
	return opts
}

// NewLogger builds a zap logger from the log section.
func (f *File) NewLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if f.Log.Level != "" {
		if err := level.UnmarshalText([]byte(f.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", f.Log.Level, err)
		}
	}

	zc := zap.NewProductionConfig()
	if f.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, ext)
	}
}
