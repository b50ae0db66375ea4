package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/newthinker/splitgate/internal/notifier"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/newthinker/splitgate/internal/split"
	"github.com/newthinker/splitgate/internal/storage/archive"
	"github.com/newthinker/splitgate/internal/tradelog"
	"github.com/spf13/viper"
)

type Config struct {
	Storage     StorageConfig              `mapstructure:"storage"`
	Splits      gate.SplitThresholds       `mapstructure:"splits"`
	WalkForward gate.WalkForwardThresholds `mapstructure:"walk_forward"`
	Monthly     period.Thresholds          `mapstructure:"monthly"`
	Classifier  ClassifierConfig           `mapstructure:"classifier"`
	Regimes     []tradelog.Window          `mapstructure:"regimes" validate:"dive"`
	Notifiers   []notifier.Config          `mapstructure:"notifiers" validate:"dive"`
	Metrics     MetricsConfig              `mapstructure:"metrics"`
	Workers     int                        `mapstructure:"workers" validate:"gte=0"`
}

// StorageConfig selects where artifacts are read from and outputs written to.
type StorageConfig struct {
	Artifacts archive.Config `mapstructure:"artifacts"`
	Outputs   archive.Config `mapstructure:"outputs"`
}

// ClassifierConfig holds the split keyword sets.
type ClassifierConfig struct {
	Runs    split.Keywords       `mapstructure:"runs"`
	Reports split.ReportKeywords `mapstructure:"reports"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the production thresholds with local storage.
func Defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			Artifacts: archive.Config{Type: archive.TypeLocalFS, Path: "."},
			Outputs:   archive.Config{Type: archive.TypeLocalFS, Path: "."},
		},
		Splits:      gate.DefaultSplitThresholds(),
		WalkForward: gate.DefaultWalkForwardThresholds(),
		Monthly:     period.DefaultThresholds(),
		Classifier: ClassifierConfig{
			Runs:    split.DefaultKeywords(),
			Reports: split.DefaultReportKeywords(),
		},
		Regimes: tradelog.DefaultWindows(),
		Metrics: MetricsConfig{
			Enabled:      false,
			TextfilePath: "outputs/splitgate.prom",
		},
		Workers: runtime.NumCPU(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := NewValidator().Struct(c); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	for _, s := range []archive.Config{c.Storage.Artifacts, c.Storage.Outputs} {
		if s.Type == archive.TypeS3 && s.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when storage type is s3"))
		}
	}

	if _, err := tradelog.CompileWindows(c.Regimes); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("metrics textfile_path required when metrics are enabled"))
	}

	return nil
}

// ValidateThresholds checks a threshold struct after command-line overrides.
func ValidateThresholds(th any) error {
	if err := NewValidator().Struct(th); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	return nil
}
