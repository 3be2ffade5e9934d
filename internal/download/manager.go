package download

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/gist-downloader/internal/config"
	"github.com/handiism/gist-downloader/internal/github"
	"github.com/handiism/gist-downloader/internal/logging"
	"github.com/handiism/gist-downloader/internal/metrics"
	"github.com/handiism/gist-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// GistID is set for events about a single gist.
	GistID string
}

// Client is the transport shared by the listing and download stages.
// *http.Client implements it.
type Client interface {
	github.PageFetcher
	Fetcher
}

// Summary aggregates the outcomes of one batch.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int

	// Files and Bytes count everything written, failed gists included.
	Files int
	Bytes int64

	// Outcomes holds one entry per gist, in input order.
	Outcomes []Outcome
	Duration time.Duration
}

// Err returns a *PartialFailureError when any gist failed, nil otherwise.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	perr := &PartialFailureError{Total: s.Total}
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			perr.Failures = append(perr.Failures, o)
		}
	}
	return perr
}

// PartialFailureError reports a batch in which some gists failed.
type PartialFailureError struct {
	Total    int
	Failures []Outcome
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d gists failed", len(e.Failures), e.Total)
}

// Unwrap exposes each failed gist's error to errors.Is and errors.As.
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, o := range e.Failures {
		errs = append(errs, o.Err)
	}
	return errs
}

// Manager coordinates gist listing and downloads.
type Manager struct {
	settings *config.Settings
	lister   *github.Lister
	worker   *Worker
	gate     *Gate
	logger   *zap.Logger
	metrics  *metrics.Metrics

	gists           []*model.Gist
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
	progressMu sync.Mutex
	mu         sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the Manager and its components.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.OrNop(logger)
	}
}

// WithMetrics sets the metrics sink used by the Manager and its components.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a new download Manager.
//
// client is used for both the listing and the file downloads. Settings are
// validated; an invalid concurrency yields ErrInvalidCapacity.
func NewManager(settings *config.Settings, client Client, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	m := &Manager{
		settings:   settings,
		logger:     zap.NewNop(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	gate, err := NewGate(settings.Concurrency)
	if err != nil {
		return nil, err
	}
	m.gate = gate

	m.lister = github.NewLister(client,
		github.WithBaseURL(settings.BaseURL),
		github.WithThrottle(github.NewThrottle(settings.ThrottleDelay.Duration)),
		github.WithLogger(m.logger),
		github.WithMetrics(m.metrics),
	)
	m.worker = NewWorker(client, gate, settings.OutputDir,
		WithWorkerLogger(m.logger),
		WithWorkerMetrics(m.metrics),
		WithFileHook(func(n int64) {
			atomic.AddInt64(&m.receivedBytes, n)
			atomic.AddInt32(&m.downloadedFiles, 1)
		}),
	)

	return m, nil
}

// Initialize lists the gists of username, up to the configured limit.
//
// Unlike downloads, a listing failure is fatal and returned as is.
func (m *Manager) Initialize(ctx context.Context, username string) error {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Listing gists of %s", username), Level: LevelVerbose})

	gists, err := m.lister.List(ctx, username, m.settings.Limit)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error listing gists of %s: %v", username, err), Level: LevelError})
		return err
	}

	for _, g := range gists {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found gist: %s", g), Level: LevelInfo, GistID: g.ID})
	}

	m.mu.Lock()
	m.gists = gists
	m.calculateTotals()
	m.mu.Unlock()

	return nil
}

// StartDownloads downloads all initialized gists.
func (m *Manager) StartDownloads(ctx context.Context) (Summary, error) {
	return m.RunBatch(ctx, m.Gists())
}

// RunBatch downloads every gist concurrently, at most settings.Concurrency at
// a time, and waits for all of them.
//
// A failing gist never stops the others; failures are reported in the
// Summary. Cancelling ctx stops the wait only: RunBatch returns ctx.Err()
// right away while the started downloads run on, detached from ctx.
func (m *Manager) RunBatch(ctx context.Context, gists []*model.Gist) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Total: len(gists)}
	start := time.Now()
	logger := m.logger.With(zap.String("run_id", summary.RunID))

	logger.Info("batch started",
		zap.Int("gists", len(gists)),
		zap.Int("concurrency", m.gate.Capacity()),
		zap.String("output_dir", m.settings.OutputDir),
	)

	if interval := m.settings.MonitorInterval.Duration; interval > 0 {
		mon := newMonitor(interval, m.gate, logger, m.metrics)
		mon.start()
		defer mon.stop()
	}

	outcomes := make([]Outcome, len(gists))
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for i, gist := range gists {
		g.Go(func() error {
			out := m.worker.Download(workCtx, gist)
			outcomes[i] = out
			m.reportOutcome(gist, out)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("batch interrupted", zap.Error(ctx.Err()))
		return summary, ctx.Err()
	}

	summary.Outcomes = outcomes
	for _, o := range outcomes {
		if o.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Files += o.Files
		summary.Bytes += o.Bytes
	}
	summary.Duration = time.Since(start)
	m.metrics.ObserveBatch(summary.Duration)

	logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("files", summary.Files),
		zap.Int64("bytes", summary.Bytes),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return atomic.LoadInt64(&m.receivedBytes), m.totalBytes,
		atomic.LoadInt32(&m.downloadedFiles), m.totalFiles
}

// Gists returns the gists found by Initialize.
func (m *Manager) Gists() []*model.Gist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gists
}

// GetGistNames returns the display lines of all initialized gists.
func (m *Manager) GetGistNames() []string {
	gists := m.Gists()
	names := make([]string, len(gists))
	for i, g := range gists {
		names[i] = g.String()
	}
	return names
}

// PeakConcurrency returns the highest number of simultaneous downloads seen.
func (m *Manager) PeakConcurrency() int {
	return m.gate.Peak()
}

func (m *Manager) calculateTotals() {
	m.totalFiles = int32(model.CountFiles(m.gists))
	m.totalBytes = 0
	for _, g := range m.gists {
		m.totalBytes += g.TotalSize()
	}
}

func (m *Manager) reportOutcome(gist *model.Gist, out Outcome) {
	if out.Succeeded() {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloaded gist %s (%d files)", gist.ID, out.Files),
			Level:   LevelSuccess,
			GistID:  gist.ID,
		})
		return
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Failed gist %s: %v", gist.ID, out.Err),
		Level:   LevelError,
		GistID:  gist.ID,
	})
}

// progress delivers event to the callback, one event at a time.
func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	m.onProgress(event)
}
