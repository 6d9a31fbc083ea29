// Package scheduler runs the daily history path: it copies current offer
// prices into the price snapshot table and aggregates them into history
// squares. The path is independent of per-source ingestion and idempotent,
// so a missed or repeated run is harmless.
package scheduler

import (
	"context"
	"time"

	"github.com/flatwatch/flatwatch/internal/archive"
	"github.com/flatwatch/flatwatch/internal/clock"
	historydomain "github.com/flatwatch/flatwatch/internal/history/domain"
	"github.com/flatwatch/flatwatch/internal/meta"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lastSnapshotKey is the meta key guarding the daily job. It holds the
// day stamp of the last successful run and is only advanced on success,
// so a failed run is retried on the next tick.
const lastSnapshotKey = "lastSnapshotDate"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	HistorySvc historydomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	metaStore  *meta.Store
	historySvc historydomain.Service
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		metaStore:  meta.New(p.DB),
		historySvc: p.HistorySvc,
	}
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("daily snapshot failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce runs the daily job at most once per calendar day.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	now := s.clock.Now()
	today := archive.DailyStamp(now)

	last, err := s.metaStore.Get(ctx, lastSnapshotKey)
	if err != nil {
		return err
	}
	if last == today {
		return nil
	}

	ts, err := s.historySvc.SaveDailySnapshot(ctx)
	if err != nil {
		return err
	}
	s.log.Info("saved the snapshot", zap.Time("ts", ts))

	res, err := s.historySvc.GenerateSquares(ctx, ts)
	if err != nil {
		return err
	}
	s.log.Info("generated squares",
		zap.Int("created", res.Created),
		zap.Bool("already_exists", res.AlreadyExists),
	)

	return s.metaStore.Set(ctx, lastSnapshotKey, today, now)
}
