// Package resync periodically re-adds a fixed set of tracked clan tags, so
// clans dropped from the store (or missed while the service was down) are
// brought back. Add is idempotent, so a sweep never produces duplicate
// records or duplicate events.
package resync

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/events"
	"github.com/wows-tools/wows-clan-sync/syncer"
)

type Sweeper struct {
	sync      *syncer.Syncer
	pool      *events.Pool
	tags      []string
	interval  time.Duration
	logger    *zap.SugaredLogger
	scheduler *gocron.Scheduler
}

func NewSweeper(sync *syncer.Syncer, pool *events.Pool, tags []string, interval time.Duration, logger *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		sync:      sync,
		pool:      pool,
		tags:      tags,
		interval:  interval,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep runs one pass over the tracked tags. A failing tag does not stop the
// pass; an unreachable bus does, since no event could go out anyway.
func (s *Sweeper) Sweep() {
	ctx := context.Background()
	s.logger.Debugf("start resync sweep over %d tags", len(s.tags))
	for _, tag := range s.tags {
		pub, err := s.pool.Acquire(ctx)
		if err != nil {
			s.logger.Warnf("resync sweep: event bus unavailable: %s", err)
			return
		}
		outcome, err := s.sync.Add(ctx, pub, tag)
		pub.Release()
		if err != nil {
			s.logger.Warnf("resync sweep: add clan [%s]: %s", tag, err)
			continue
		}
		s.logger.Debugf("resync sweep: clan [%s]: %s", tag, outcome)
	}
	s.logger.Debugf("finish resync sweep")
}
