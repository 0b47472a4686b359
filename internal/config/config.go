// Package config loads spectap settings from defaults, a YAML file,
// SPECTAP_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/window"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "SPECTAP"

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Planners selectable for the FFT backend.
const (
	PlannerAlgoFFT = "algofft"
	PlannerGoDSP   = "godsp"
)

var errInvalid = errors.New("invalid config")

// Config is the full spectap configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	Output    string `mapstructure:"output"     yaml:"output"`

	Analyser AnalyserConfig `mapstructure:"analyser" yaml:"analyser"`
}

// AnalyserConfig configures the tap used by `spectap analyse`.
type AnalyserConfig struct {
	Type        string  `mapstructure:"type"         yaml:"type"`
	Size        int     `mapstructure:"size"         yaml:"size"`
	Smoothing   float64 `mapstructure:"smoothing"    yaml:"smoothing"`
	NormalRange bool    `mapstructure:"normal_range" yaml:"normal_range"`
	Window      string  `mapstructure:"window"       yaml:"window"`
	Planner     string  `mapstructure:"planner"      yaml:"planner"`
	BlockSize   int     `mapstructure:"block_size"   yaml:"block_size"`
	Every       int     `mapstructure:"every"        yaml:"every"`
	Peaks       int     `mapstructure:"peaks"        yaml:"peaks"`
}

// Default returns the built-in configuration.
func Default() Config {
	a := analyser.DefaultConfig()

	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Output:    OutputTable,
		Analyser: AnalyserConfig{
			Type:      a.Type.String(),
			Size:      a.Size,
			Smoothing: a.Smoothing,
			Window:    window.TypeBlackman.String(),
			Planner:   PlannerAlgoFFT,
			BlockSize: 128,
			Every:     64,
			Peaks:     5,
		},
	}
}

// SetDefaults registers [Default] on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output", d.Output)
	v.SetDefault("analyser.type", d.Analyser.Type)
	v.SetDefault("analyser.size", d.Analyser.Size)
	v.SetDefault("analyser.smoothing", d.Analyser.Smoothing)
	v.SetDefault("analyser.normal_range", d.Analyser.NormalRange)
	v.SetDefault("analyser.window", d.Analyser.Window)
	v.SetDefault("analyser.planner", d.Analyser.Planner)
	v.SetDefault("analyser.block_size", d.Analyser.BlockSize)
	v.SetDefault("analyser.every", d.Analyser.Every)
	v.SetDefault("analyser.peaks", d.Analyser.Peaks)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"log-format":   "log_format",
	"output":       "output",
	"type":         "analyser.type",
	"size":         "analyser.size",
	"smoothing":    "analyser.smoothing",
	"normal-range": "analyser.normal_range",
	"window":       "analyser.window",
	"planner":      "analyser.planner",
	"block-size":   "analyser.block_size",
	"every":        "analyser.every",
	"peaks":        "analyser.peaks",
}

// BindFlags binds every known flag present in flags to its config key.
// Unset flags fall back to the file, environment and defaults.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}

		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

// Load reads the configuration into a Config. An explicit path must exist;
// without one the standard locations are searched and a missing file is not
// an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("spectap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "spectap"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every setting, including the analyser bounds.
func (c Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%w: output %q (want table, json or yaml)", errInvalid, c.Output)
	}

	a := c.Analyser

	t, err := analyser.ParseType(a.Type)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalid, err)
	}

	ac := analyser.ApplyOptions(
		analyser.WithSize(a.Size),
		analyser.WithSmoothing(a.Smoothing),
		analyser.WithType(t),
	)
	if err := ac.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errInvalid, err)
	}

	if _, err := window.Parse(a.Window); err != nil {
		return fmt.Errorf("%w: %w", errInvalid, err)
	}

	switch a.Planner {
	case PlannerAlgoFFT, PlannerGoDSP:
	default:
		return fmt.Errorf("%w: planner %q (want algofft or godsp)", errInvalid, a.Planner)
	}

	if a.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be > 0: %d", errInvalid, a.BlockSize)
	}

	if a.Every <= 0 {
		return fmt.Errorf("%w: every must be > 0: %d", errInvalid, a.Every)
	}

	if a.Peaks < 0 {
		return fmt.Errorf("%w: peaks must be >= 0: %d", errInvalid, a.Peaks)
	}

	return nil
}
