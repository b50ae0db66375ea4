package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/newthinker/splitgate/internal/notifier"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/newthinker/splitgate/internal/tradelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  outputs:
    type: localfs
    path: "/tmp/splitgate"
splits:
  combined_pf_min: 2.5
walk_forward:
  max_dd_pct: 12
notifiers:
  - type: webhook
    params:
      url: "http://example.com/hook"
workers: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/splitgate", cfg.Storage.Outputs.Path)
	assert.Equal(t, "localfs", cfg.Storage.Artifacts.Type)
	assert.Equal(t, 2.5, cfg.Splits.CombinedPFMin)
	// untouched keys keep their defaults
	assert.Equal(t, 15.0, cfg.Splits.CombinedDDMax)
	assert.Equal(t, 12.0, cfg.WalkForward.MaxDDPct)
	assert.Equal(t, 2.5, cfg.WalkForward.ISPFMin)
	require.Len(t, cfg.Notifiers, 1)
	assert.Equal(t, "webhook", cfg.Notifiers[0].Type)
	assert.Equal(t, "http://example.com/hook", cfg.Notifiers[0].Params["url"])
	assert.Equal(t, 2, cfg.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SPLITGATE_TEST_BUCKET", "bt-artifacts")
	path := writeConfig(t, `
storage:
  artifacts:
    type: s3
    s3:
      bucket: "${SPLITGATE_TEST_BUCKET}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bt-artifacts", cfg.Storage.Artifacts.S3.Bucket)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 2.0, cfg.Splits.CombinedPFMin)
	assert.Equal(t, 300, cfg.Splits.CombinedTradesMin)
	assert.Equal(t, 0.60, cfg.Splits.WFOPassRatioMin)
	assert.Equal(t, 1.6, cfg.WalkForward.OOSPFMedianMin)
	assert.Equal(t, 25.0, cfg.WalkForward.StressPFDegradeMaxPct)
	assert.Equal(t, 1.8, cfg.Monthly.ObjectiveRatio)
	assert.Equal(t, 0.02, cfg.Monthly.DeterminismMaxDrift)
	assert.Len(t, cfg.Regimes, 2)
	assert.Contains(t, cfg.Classifier.Runs.Regime, "hard_oos")
	assert.Positive(t, cfg.Workers)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr *core.Error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"negative threshold", func(c *Config) { c.Splits.CombinedDDMax = -1 }, core.ErrConfigInvalid},
		{"ratio above one", func(c *Config) { c.Splits.WFOPassRatioMin = 1.5 }, core.ErrConfigInvalid},
		{"unknown storage", func(c *Config) { c.Storage.Outputs.Type = "ftp" }, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Storage.Artifacts.Type = "s3" }, core.ErrConfigMissing},
		{"bad regime time", func(c *Config) {
			c.Regimes = []tradelog.Window{{Name: "x", From: "soon", To: "2025-01-01 00:00:00"}}
		}, core.ErrConfigInvalid},
		{"reversed regime", func(c *Config) {
			c.Regimes = []tradelog.Window{{Name: "x", From: "2025-02-01 00:00:00", To: "2025-01-01 00:00:00"}}
		}, core.ErrConfigInvalid},
		{"unknown notifier", func(c *Config) {
			c.Notifiers = []notifier.Config{{Type: "pager"}}
		}, core.ErrConfigInvalid},
		{"empty keyword", func(c *Config) { c.Classifier.Runs.Regime = []string{""} }, core.ErrConfigInvalid},
		{"metrics without path", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.TextfilePath = ""
		}, core.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateThresholds(t *testing.T) {
	splits := gate.DefaultSplitThresholds()
	assert.NoError(t, ValidateThresholds(splits))

	splits.WFOPassRatioMin = 1.5
	err := ValidateThresholds(splits)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
	assert.Contains(t, err.Error(), "WFOPassRatioMin")

	wfo := gate.DefaultWalkForwardThresholds()
	wfo.MinTrades = -1
	assert.True(t, errors.Is(ValidateThresholds(wfo), core.ErrConfigInvalid))

	monthly := period.DefaultThresholds()
	monthly.DDMax = -5
	assert.True(t, errors.Is(ValidateThresholds(monthly), core.ErrConfigInvalid))
}
