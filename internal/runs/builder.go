// Package runs turns discovered backtest artifacts into RunRecords.
package runs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/discovery"
	"github.com/newthinker/splitgate/internal/metrics"
	"github.com/newthinker/splitgate/internal/report"
	"github.com/newthinker/splitgate/internal/split"
	"github.com/newthinker/splitgate/internal/storage/archive"
	"github.com/newthinker/splitgate/internal/tradelog"
	"go.uber.org/zap"
)

// Builder extracts RunRecords from an artifact store.
type Builder struct {
	store      archive.Storage
	classifier *split.Classifier
	runs       *report.Extractor
	reports    *report.Extractor
	metrics    *metrics.Registry
	logger     *zap.Logger
	workers    int
}

// NewBuilder creates a builder reading from store.
func NewBuilder(store archive.Storage, classifier *split.Classifier, logger *zap.Logger) *Builder {
	if classifier == nil {
		classifier = split.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		store:      store,
		classifier: classifier,
		runs:       report.NewExtractor(report.SplitRunProfile(), logger),
		reports:    report.NewExtractor(report.WalkForwardProfile(), logger),
		logger:     logger,
		workers:    1,
	}
}

// WithWorkers sets the number of artifacts extracted concurrently.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.workers = n
	}
	return b
}

// WithMetrics records extracted and dropped runs in reg.
func (b *Builder) WithMetrics(reg *metrics.Registry) *Builder {
	b.metrics = reg
	return b
}

// BuildRuns builds one record per metadata file, in input order. Runs
// without a usable artifact are logged and dropped. NO_RUNS is returned when
// nothing is left.
func (b *Builder) BuildRuns(ctx context.Context, metadataPaths []string) ([]core.RunRecord, error) {
	results := parallel(ctx, b.workers, metadataPaths, b.BuildRun)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]core.RunRecord, 0, len(results))
	for i, res := range results {
		if res.err != nil {
			b.drop(metadataPaths[i], res.err)
			continue
		}
		b.extracted(res.record)
		records = append(records, res.record)
	}

	if len(records) == 0 {
		return nil, core.WrapError(core.ErrNoRuns, fmt.Errorf("%d metadata files, none with a readable report or trade log", len(metadataPaths)))
	}
	return records, nil
}

// BuildRun builds the record described by one metadata file.
func (b *Builder) BuildRun(ctx context.Context, metadataPath string) (core.RunRecord, error) {
	d, err := discovery.LoadDescriptor(ctx, b.store, metadataPath)
	if err != nil {
		return core.RunRecord{}, err
	}

	artifacts, err := discovery.Resolve(ctx, b.store, d)
	if err != nil {
		return core.RunRecord{}, err
	}

	var m core.Metrics
	switch artifacts.Source() {
	case core.SourceStructured:
		data, err := b.read(ctx, artifacts.Report)
		if err != nil {
			return core.RunRecord{}, err
		}
		res := b.runs.Extract(data)
		if res.Malformed {
			b.logger.Warn("report is malformed, metrics from text fallback",
				zap.String("path", artifacts.Report))
		}
		m = res.Metrics
	case core.SourceEventLog:
		data, err := b.read(ctx, artifacts.TradeLog)
		if err != nil {
			return core.RunRecord{}, err
		}
		rp, err := tradelog.ReplayLog(bytes.NewReader(data))
		if err != nil {
			return core.RunRecord{}, core.WrapError(core.ErrInputInvalid, fmt.Errorf("%s: %w", artifacts.TradeLog, err))
		}
		m = rp.Metrics()
	}

	rec := core.NewRunRecord(d.Label, d.SplitTag, b.classifier.ClassifyRun(d.SplitTag, d.Label), artifacts.Source(), m)
	rec.ID = core.RunID(d.Label, d.SplitTag, metadataPath)
	rec.FromDate = d.FromDate
	rec.ToDate = d.ToDate
	rec.ReportPath = artifacts.Report
	rec.ReportHTML = d.ReportHTML
	rec.TradeLogPath = d.TradeLogCSV
	rec.ConfigSHA256 = d.ConfigSHA256
	rec.DurationSeconds = d.DurationSeconds
	rec.ExitCode = d.ExitCode
	return rec, nil
}

// BuildReports builds one record per walk-forward report, classified by its
// file name. Unreadable reports are logged and dropped.
func (b *Builder) BuildReports(ctx context.Context, reportPaths []string) ([]core.RunRecord, error) {
	results := parallel(ctx, b.workers, reportPaths, b.BuildReport)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]core.RunRecord, 0, len(results))
	for i, res := range results {
		if res.err != nil {
			b.drop(reportPaths[i], res.err)
			continue
		}
		b.extracted(res.record)
		records = append(records, res.record)
	}

	if len(records) == 0 {
		return nil, core.WrapError(core.ErrNoReports, fmt.Errorf("none of %d reports readable", len(reportPaths)))
	}
	return records, nil
}

// BuildReport builds the record of one walk-forward report.
func (b *Builder) BuildReport(ctx context.Context, reportPath string) (core.RunRecord, error) {
	data, err := b.read(ctx, reportPath)
	if err != nil {
		return core.RunRecord{}, err
	}

	res := b.reports.Extract(data)
	if res.Malformed {
		b.logger.Warn("report is malformed, all fields absent", zap.String("path", reportPath))
	}

	stem := Stem(reportPath)
	rec := core.NewRunRecord(stem, stem, b.classifier.ClassifyReportName(stem), core.SourceStructured, res.Metrics)
	rec.ID = core.RunID(stem, reportPath)
	rec.ReportPath = reportPath
	return rec, nil
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (b *Builder) read(ctx context.Context, p string) ([]byte, error) {
	data, err := b.store.Read(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrArtifactMissing, fmt.Errorf("%s: %w", p, err))
	}
	return data, nil
}

func (b *Builder) drop(p string, err error) {
	reason := "unknown"
	var coded *core.Error
	if errors.As(err, &coded) {
		reason = strings.ToLower(coded.Code)
	}
	b.logger.Warn("run dropped", zap.String("path", p), zap.String("reason", reason), zap.Error(err))
	if b.metrics != nil {
		b.metrics.RecordRunDropped(reason)
	}
}

func (b *Builder) extracted(rec core.RunRecord) {
	b.logger.Debug("run extracted",
		zap.String("run_label", rec.Label),
		zap.String("split_class", string(rec.SplitClass)),
		zap.String("source", string(rec.Source)))
	if b.metrics != nil {
		b.metrics.RecordRunExtracted(string(rec.Source))
	}
}
