package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/lockout"
	"github.com/relaydocs/relaygw/internal/ratelimit"
)

// pruner periodically drops expired local fallback state.
type pruner struct {
	every   time.Duration
	windows *ratelimit.LocalWindows
	entries *lockout.LocalEntries
	logger  *zap.Logger
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newPruner(every time.Duration, windows *ratelimit.LocalWindows, entries *lockout.LocalEntries, logger *zap.Logger) *pruner {
	return &pruner{
		every:   every,
		windows: windows,
		entries: entries,
		logger:  logger,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

// Run sweeps every interval until ctx is done or Stop is called.
func (p *pruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *pruner) sweep() {
	now := p.now()
	windows := p.windows.Prune(now)
	entries := p.entries.Prune(now)
	if windows > 0 || entries > 0 {
		p.logger.Debug("pruned local fallback state",
			zap.Int("rate_limit_windows", windows),
			zap.Int("lockout_entries", entries),
		)
	}
}

// Stop ends Run. It is safe to call more than once, and before Run.
func (p *pruner) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}
