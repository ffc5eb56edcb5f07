package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/repository"
)

// RefreshScheduler keeps a cached cohort summary that the dashboard
// endpoints serve, re-querying the database on a fixed interval so a
// fresh export shows up without a restart.
type RefreshScheduler struct {
	log      *zap.Logger
	interval time.Duration

	mu        sync.RWMutex
	summary   []repository.MetricSummary
	refreshed time.Time
}

func NewRefreshScheduler(log *zap.Logger, interval time.Duration) *RefreshScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshScheduler{
		log:      log,
		interval: interval,
	}
}

// Start refreshes once immediately, then runs the ticker in a goroutine.
func (s *RefreshScheduler) Start() {
	s.log.Info("Starting summary refresh scheduler...", zap.Duration("interval", s.interval))
	s.refresh()
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.refresh()
		}
	}()
}

func (s *RefreshScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := repository.GetSummary(ctx)
	if err != nil {
		s.log.Error("Failed to refresh metric summary", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.summary = summary
	s.refreshed = time.Now()
	s.mu.Unlock()

	s.log.Debug("Metric summary refreshed", zap.Int("metrics", len(summary)))
}

// Summary returns the cached summary and when it was last refreshed.
func (s *RefreshScheduler) Summary() ([]repository.MetricSummary, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, s.refreshed
}
