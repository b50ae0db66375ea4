package discovery

import (
	"context"
	"fmt"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/storage/archive"
)

// Artifacts are the files a run's metrics can be derived from. Empty paths
// are absent.
type Artifacts struct {
	Report   string
	TradeLog string
}

// Source returns the metrics source the artifacts support, preferring the
// report.
func (a Artifacts) Source() core.MetricsSource {
	switch {
	case a.Report != "":
		return core.SourceStructured
	case a.TradeLog != "":
		return core.SourceEventLog
	default:
		return core.SourceNone
	}
}

// Resolve locates the report and trade log of a run. The report named by
// the descriptor wins when it exists; otherwise the last matching report in
// the run directory is used. An empty trade-log path is treated as missing.
// ARTIFACT_MISSING is returned when neither artifact exists.
func Resolve(ctx context.Context, store archive.Storage, d Descriptor) (Artifacts, error) {
	var a Artifacts

	if d.ReportXML != "" {
		ok, err := store.Exists(ctx, d.ReportXML)
		if err != nil {
			return a, core.WrapError(core.ErrArchiveFailed, err)
		}
		if ok {
			a.Report = d.ReportXML
		}
	}

	if a.Report == "" {
		reports, err := listDir(ctx, store, d.Dir, ReportPattern)
		if err != nil {
			return a, err
		}
		if len(reports) > 0 {
			a.Report = reports[len(reports)-1]
		}
	}

	if d.TradeLogCSV != "" {
		ok, err := store.Exists(ctx, d.TradeLogCSV)
		if err != nil {
			return a, core.WrapError(core.ErrArchiveFailed, err)
		}
		if ok {
			a.TradeLog = d.TradeLogCSV
		}
	}

	if a.Source() == core.SourceNone {
		return a, core.WrapError(core.ErrArtifactMissing, fmt.Errorf("run %s", d.MetadataPath))
	}
	return a, nil
}
