// Package app wires the stores, notifiers and metrics used by the evaluation
// commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/newthinker/splitgate/internal/config"
	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/export"
	"github.com/newthinker/splitgate/internal/metrics"
	"github.com/newthinker/splitgate/internal/notifier"
	"github.com/newthinker/splitgate/internal/notifier/telegram"
	"github.com/newthinker/splitgate/internal/notifier/webhook"
	"github.com/newthinker/splitgate/internal/runs"
	"github.com/newthinker/splitgate/internal/split"
	"github.com/newthinker/splitgate/internal/storage/archive"
	"github.com/newthinker/splitgate/internal/tradelog"
	"go.uber.org/zap"
)

// App is the evaluation orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	artifacts  archive.Storage
	outputs    archive.Storage
	classifier *split.Classifier
	windows    []tradelog.RegimeWindow
	notifiers  *notifier.Registry
	metrics    *metrics.Registry

	stdout io.Writer
	now    func() time.Time
}

// New creates an App from a validated configuration. Notifiers listed in the
// configuration are created and registered.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	artifacts, err := archive.New(cfg.Storage.Artifacts)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("artifact storage: %w", err))
	}
	outputs, err := archive.New(cfg.Storage.Outputs)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("output storage: %w", err))
	}

	windows, err := tradelog.CompileWindows(cfg.Regimes)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		artifacts:  artifacts,
		outputs:    outputs,
		classifier: split.NewClassifier(cfg.Classifier.Runs, cfg.Classifier.Reports),
		windows:    windows,
		notifiers:  notifier.NewRegistry(),
		metrics:    metrics.NewRegistry(),
		stdout:     os.Stdout,
		now:        time.Now,
	}

	for _, nc := range cfg.Notifiers {
		n, err := newNotifier(nc)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		if err := a.RegisterNotifier(n); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
	}

	return a, nil
}

func newNotifier(cfg notifier.Config) (notifier.Notifier, error) {
	var n notifier.Notifier
	switch cfg.Type {
	case "webhook":
		n = webhook.New("", nil)
	case "telegram":
		n = telegram.New("", "")
	default:
		return nil, fmt.Errorf("unknown notifier type %q", cfg.Type)
	}
	if err := n.Init(cfg); err != nil {
		return nil, err
	}
	return n, nil
}

// RegisterNotifier adds a notifier to the app
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

// SetOutput redirects the console summaries.
func (a *App) SetOutput(w io.Writer) {
	a.stdout = w
}

// Metrics returns the batch metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Notifiers returns the names of the registered notifiers.
func (a *App) Notifiers() []string {
	return a.notifiers.Names()
}

func (a *App) builder() *runs.Builder {
	return runs.NewBuilder(a.artifacts, a.classifier, a.logger).
		WithWorkers(a.cfg.Workers).
		WithMetrics(a.metrics)
}

func (a *App) writer() *export.Writer {
	return export.NewWriter(a.outputs, a.logger)
}

// Notify publishes a verdict to every notifier. Failures are logged and
// counted, never returned.
func (a *App) Notify(ctx context.Context, v core.Verdict) {
	if a.notifiers.Len() == 0 {
		return
	}
	if v.GeneratedAt.IsZero() {
		v.GeneratedAt = a.now().UTC()
	}

	errs := a.notifiers.NotifyAll(ctx, v)
	for _, name := range a.notifiers.Names() {
		err := errs[name]
		a.metrics.RecordNotification(name, err)
		if err != nil {
			a.logger.Warn("notification failed", zap.String("notifier", name), zap.Error(err))
			continue
		}
		a.logger.Debug("notification sent", zap.String("notifier", name))
	}
}

// Finish records the command duration and, when enabled, writes the metrics
// textfile.
func (a *App) Finish(command string, started time.Time) error {
	a.metrics.RecordCommand(command, a.now().Sub(started).Seconds())
	if !a.cfg.Metrics.Enabled {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		return core.WrapError(core.ErrArchiveFailed, fmt.Errorf("writing metrics: %w", err))
	}
	a.logger.Info("wrote metrics", zap.String("path", a.cfg.Metrics.TextfilePath))
	return nil
}
