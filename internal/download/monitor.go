package download

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/gist-downloader/internal/metrics"
)

// monitor samples scheduling metrics while a batch runs.
type monitor struct {
	interval time.Duration
	gate     *Gate
	logger   *zap.Logger
	metrics  *metrics.Metrics

	samples atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
}

func newMonitor(interval time.Duration, gate *Gate, logger *zap.Logger, m *metrics.Metrics) *monitor {
	return &monitor{
		interval: interval,
		gate:     gate,
		logger:   logger,
		metrics:  m,
		done:     make(chan struct{}),
	}
}

func (mon *monitor) start() {
	mon.wg.Add(1)
	go func() {
		defer mon.wg.Done()

		ticker := time.NewTicker(mon.interval)
		defer ticker.Stop()

		for {
			select {
			case <-mon.done:
				return
			case <-ticker.C:
				mon.sample()
			}
		}
	}()
}

// stop ends sampling and waits for the sampling goroutine to exit.
func (mon *monitor) stop() {
	close(mon.done)
	mon.wg.Wait()
}

func (mon *monitor) sample() {
	goroutines := runtime.NumGoroutine()
	inFlight := mon.gate.InFlight()

	mon.metrics.SetGoroutines(goroutines)
	mon.metrics.SetInFlight(inFlight)
	mon.logger.Debug("runtime sample",
		zap.Int("goroutines", goroutines),
		zap.Int("in_flight", inFlight),
		zap.Int("peak_in_flight", mon.gate.Peak()),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
	)
	mon.samples.Add(1)
}
