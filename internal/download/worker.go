package download

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	ioutils "github.com/handiism/gist-downloader/internal/io"
	"github.com/handiism/gist-downloader/internal/logging"
	"github.com/handiism/gist-downloader/internal/metrics"
	"github.com/handiism/gist-downloader/internal/model"
)

// Fetcher downloads one URL to a local path. *http.Client implements it.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Outcome is the result of downloading one gist.
type Outcome struct {
	GistID string

	// Dir is the directory the gist's files were written to.
	Dir string

	// Err is nil on success. Otherwise it wraps an *http.TransportError or
	// an *ioutils.FileSystemError.
	Err error

	// Files and Bytes count what was written, including on failure.
	Files int
	Bytes int64

	Duration time.Duration
}

// Succeeded reports whether every file of the gist was written.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Worker downloads the files of one gist at a time while holding a Gate permit.
type Worker struct {
	fetcher    Fetcher
	gate       *Gate
	outputRoot string

	logger  *zap.Logger
	metrics *metrics.Metrics
	onFile  func(bytes int64)
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the worker logger.
func WithWorkerLogger(logger *zap.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logging.OrNop(logger)
	}
}

// WithWorkerMetrics sets the metrics sink.
func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithFileHook registers a function called after each file is written.
func WithFileHook(fn func(bytes int64)) WorkerOption {
	return func(w *Worker) {
		w.onFile = fn
	}
}

// NewWorker creates a Worker writing below outputRoot.
func NewWorker(fetcher Fetcher, gate *Gate, outputRoot string, opts ...WorkerOption) *Worker {
	w := &Worker{
		fetcher:    fetcher,
		gate:       gate,
		outputRoot: outputRoot,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Download writes every file of gist to {outputRoot}/{gist.ID}/{file name}.
//
// A permit is held for the whole call, before any network or filesystem
// work starts. Existing files are overwritten. The first failing file ends
// the gist; files already written stay on disk.
func (w *Worker) Download(ctx context.Context, gist *model.Gist) Outcome {
	dir := filepath.Join(w.outputRoot, gist.ID)
	out := Outcome{GistID: gist.ID, Dir: dir}

	if err := w.gate.Acquire(ctx); err != nil {
		out.Err = err
		return out
	}
	defer func() {
		w.gate.Release()
		w.metrics.SetInFlight(w.gate.InFlight())
	}()
	w.metrics.SetInFlight(w.gate.InFlight())

	start := time.Now()
	out.Err = w.download(ctx, gist, dir, &out)
	out.Duration = time.Since(start)

	w.metrics.BytesWritten(out.Bytes)
	w.metrics.ItemDone(out.Succeeded())
	if out.Err != nil {
		w.logger.Debug("gist download failed",
			zap.String("gist_id", gist.ID),
			zap.Int("files_written", out.Files),
			zap.Error(out.Err),
		)
	} else {
		w.logger.Debug("gist downloaded",
			zap.String("gist_id", gist.ID),
			zap.Int("files", out.Files),
			zap.Int64("bytes", out.Bytes),
			zap.Duration("duration", out.Duration),
		)
	}
	return out
}

func (w *Worker) download(ctx context.Context, gist *model.Gist, dir string, out *Outcome) error {
	if err := ioutils.ValidateFileName(gist.ID); err != nil {
		return &ioutils.FileSystemError{Op: "validate", Path: dir, Err: err}
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}

	for _, name := range gist.FileNames() {
		dest := filepath.Join(dir, name)
		if err := ioutils.ValidateFileName(name); err != nil {
			return &ioutils.FileSystemError{Op: "validate", Path: dest, Err: err}
		}

		n, err := w.fetcher.DownloadFile(ctx, gist.Files[name].RawURL, dest, nil)
		out.Bytes += n
		if err != nil {
			return fmt.Errorf("file %s: %w", name, err)
		}
		out.Files++

		w.logger.Debug("file written", zap.String("gist_id", gist.ID), zap.String("path", dest), zap.Int64("bytes", n))
		if w.onFile != nil {
			w.onFile(n)
		}
	}
	return nil
}
