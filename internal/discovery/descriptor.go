package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
	"github.com/newthinker/splitgate/internal/storage/archive"
)

// Descriptor is one run as described by its metadata file.
type Descriptor struct {
	MetadataPath string
	Dir          string

	Label    string
	SplitTag string
	FromDate string
	ToDate   string

	ReportXML   string
	ReportHTML  string
	TradeLogCSV string

	ConfigSHA256    string
	DurationSeconds *float64
	ExitCode        *int
}

// LoadDescriptor reads and decodes the metadata file at metadataPath.
// Unknown keys are ignored and missing keys take their defaults; the run
// label defaults to the name of the run directory.
func LoadDescriptor(ctx context.Context, store archive.Storage, metadataPath string) (Descriptor, error) {
	data, err := store.Read(ctx, metadataPath)
	if err != nil {
		return Descriptor{}, core.WrapError(core.ErrMetadataInvalid, fmt.Errorf("%s: %w", metadataPath, err))
	}
	return DecodeDescriptor(metadataPath, data)
}

// DecodeDescriptor decodes raw metadata belonging to metadataPath.
func DecodeDescriptor(metadataPath string, data []byte) (Descriptor, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, core.WrapError(core.ErrMetadataInvalid, fmt.Errorf("%s: %w", metadataPath, err))
	}
	if raw == nil {
		return Descriptor{}, core.WrapError(core.ErrMetadataInvalid, fmt.Errorf("%s: not an object", metadataPath))
	}

	dir := path.Dir(metadataPath)
	d := Descriptor{
		MetadataPath: metadataPath,
		Dir:          dir,
		Label:        text(raw, "run_label", path.Base(dir)),
		SplitTag:     text(raw, "split_tag", ""),
		FromDate:     text(raw, "from_date", ""),
		ToDate:       text(raw, "to_date", ""),
		ReportXML:    text(raw, "report_xml", ""),
		ReportHTML:   text(raw, "report_html", ""),
		TradeLogCSV:  text(raw, "trade_log_csv", ""),
		ConfigSHA256: text(raw, "config_sha256", ""),
	}

	if v, ok := number(raw, "duration_seconds"); ok {
		d.DurationSeconds = &v
	}
	if v, ok := number(raw, "terminal_exit_code"); ok {
		code := int(v)
		d.ExitCode = &code
	}
	return d, nil
}

func text(raw map[string]any, key, def string) string {
	switch v := raw[key].(type) {
	case nil:
		return def
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func number(raw map[string]any, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case string:
		return numeric.Parse(v)
	default:
		return 0, false
	}
}
