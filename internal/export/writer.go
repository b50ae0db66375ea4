package export

import (
	"context"
	"fmt"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/storage/archive"
	"go.uber.org/zap"
)

// Writer stores rendered outputs and remembers what it wrote.
type Writer struct {
	store   archive.Storage
	logger  *zap.Logger
	written []string
}

// NewWriter creates a writer over the output store.
func NewWriter(store archive.Storage, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, logger: logger}
}

// Write stores data at p.
func (w *Writer) Write(ctx context.Context, p string, data []byte) error {
	if err := w.store.Write(ctx, p, data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, fmt.Errorf("writing %s: %w", p, err))
	}
	w.written = append(w.written, p)
	w.logger.Info("wrote output", zap.String("path", p), zap.Int("bytes", len(data)))
	return nil
}

// WriteWith renders with render and stores the result at p.
func (w *Writer) WriteWith(ctx context.Context, p string, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", p, err)
	}
	return w.Write(ctx, p, data)
}

// Written returns the paths stored so far, in order.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}
