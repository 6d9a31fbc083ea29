package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/flatwatch/flatwatch/internal/archive"
	"github.com/flatwatch/flatwatch/internal/background"
	"github.com/flatwatch/flatwatch/internal/clock"
	"github.com/flatwatch/flatwatch/internal/diff"
	"github.com/flatwatch/flatwatch/internal/ingest/domain"
	"github.com/flatwatch/flatwatch/internal/notifier"
	obsmetrics "github.com/flatwatch/flatwatch/internal/observability/metrics"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	pkgdb "github.com/flatwatch/flatwatch/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const updatesLimit = 20

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	OfferRepo offerdomain.Repository
	Notifier  *notifier.Notifier
	Archiver  *archive.Archiver
	Runner    background.Runner
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	offerRepo offerdomain.Repository
	notifier  *notifier.Notifier
	archiver  *archive.Archiver
	runner    background.Runner

	// sources serializes ingestion per source. The read-diff-write
	// sequence below is not safe for two concurrent snapshots of the same
	// source; different sources touch disjoint key spaces and may run in
	// parallel. Cross-process serialization remains the caller's job.
	sources sync.Map
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ingest.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		offerRepo: p.OfferRepo,
		notifier:  p.Notifier,
		archiver:  p.Archiver,
		runner:    p.Runner,
	}
}

// Ingest merges a full snapshot from one source against its last known
// state.
//
// The snapshot log entry is written before the merge transaction on
// purpose: it records that a snapshot arrived, not that it merged, so it
// survives a merge rollback.
func (s *Service) Ingest(ctx context.Context, sourceName string, items []map[string]any, snapshotTimeISO string) (*domain.MergeResult, error) {
	sourceName = strings.TrimSpace(sourceName)
	if sourceName == "" {
		return nil, domain.ErrInvalidSource
	}
	snapTime, err := time.Parse(time.RFC3339, snapshotTimeISO)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSnapshotTime, snapshotTimeISO)
	}

	s.log.Info("got a snapshot",
		zap.String("name", sourceName),
		zap.Int("count", len(items)),
		zap.String("snapshot_time", snapshotTimeISO),
	)

	// Parse everything before touching storage. The first malformed item
	// aborts the whole call; duplicate ids are dropped silently, first
	// occurrence wins.
	newOffers := make([]offerdomain.Offer, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		o, err := offerdomain.ParseFromSource(item)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		newOffers = append(newOffers, o)
	}

	unlock := s.lockSource(sourceName)
	defer unlock()

	logRow := &domain.SnapshotLog{
		ID:         s.genID.Generate(),
		T:          s.clock.Now(),
		SourceName: sourceName,
		Count:      len(newOffers),
	}
	if err := s.repo.AppendLog(ctx, s.db, logRow); err != nil {
		return nil, fmt.Errorf("append snapshot log: %w", err)
	}

	result, err := s.mergeSnapshot(ctx, sourceName, newOffers, snapTime)
	if err != nil && pkgdb.IsDuplicateKeyErr(err) {
		// Another source registered one of the same canonical ids between
		// our registry read and insert. The registry is first-write-wins,
		// so rerunning the merge sees the id as known and skips it.
		s.log.Warn("canonical registry race, rerunning merge",
			zap.String("name", sourceName),
			zap.Error(err),
		)
		result, err = s.mergeSnapshot(ctx, sourceName, newOffers, snapTime)
	}
	if err != nil {
		return nil, err
	}

	obsmetrics.SnapshotsTotal.WithLabelValues(sourceName).Inc()
	obsmetrics.OffersMergedTotal.WithLabelValues(sourceName, "added").Add(float64(len(result.Added)))
	obsmetrics.OffersMergedTotal.WithLabelValues(sourceName, "removed").Add(float64(len(result.Removed)))
	obsmetrics.OffersMergedTotal.WithLabelValues(sourceName, "updated").Add(float64(len(result.Updated)))
	obsmetrics.OffersMergedTotal.WithLabelValues(sourceName, "same").Add(float64(len(result.Same)))

	s.log.Info(fmt.Sprintf("got %d: =%d ~%d +%d -%d",
		len(newOffers), len(result.Same), len(result.Updated), len(result.Added), len(result.Removed)),
		zap.String("name", sourceName),
	)

	// Notification and archival run detached from the caller. The merge is
	// already committed; their failures are logged, never surfaced.
	added := result.Added
	s.runner.Go("notify", func(taskCtx context.Context) error {
		return s.notifier.Notify(taskCtx, added, snapTime)
	})
	s.runner.Go("archive", func(taskCtx context.Context) error {
		return s.archiver.Append(sourceName, newOffers, snapTime, s.clock.Now())
	})

	return result, nil
}

func (s *Service) mergeSnapshot(ctx context.Context, sourceName string, newOffers []offerdomain.Offer, snapTime time.Time) (*domain.MergeResult, error) {
	var result domain.MergeResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.offerRepo.ListBySource(ctx, tx, sourceName)
		if err != nil {
			return fmt.Errorf("load current offers: %w", err)
		}
		oldOffers := make([]offerdomain.Offer, 0, len(rows))
		for _, row := range rows {
			oldOffers = append(oldOffers, row.Offer())
		}

		d := diff.Diff(oldOffers, newOffers, func(o offerdomain.Offer) string { return o.ID })
		result.Added = d.OnlyNew
		result.Removed = d.OnlyOld
		for _, pair := range d.Both {
			if pair.Old.ContentEqual(pair.New) {
				result.Same = append(result.Same, pair.New)
			} else {
				result.Updated = append(result.Updated, pair.New)
			}
		}

		if len(result.Removed) > 0 {
			ids := make([]string, 0, len(result.Removed))
			for _, o := range result.Removed {
				ids = append(ids, o.ID)
			}
			if err := s.offerRepo.Delete(ctx, tx, sourceName, ids); err != nil {
				return fmt.Errorf("delete removed offers: %w", err)
			}
		}

		if len(result.Added) > 0 {
			known, err := s.offerRepo.KnownIDs(ctx, tx)
			if err != nil {
				return fmt.Errorf("load known offer ids: %w", err)
			}
			// The registry is write-once: only ids never seen across any
			// source are inserted, and they are never touched again.
			var canonical []offerdomain.CanonicalOffer
			for _, o := range result.Added {
				if _, ok := known[o.ID]; ok {
					continue
				}
				canonical = append(canonical, offerdomain.NewCanonicalOffer(o))
			}
			if err := s.offerRepo.InsertCanonical(ctx, tx, canonical); err != nil {
				return fmt.Errorf("register offers: %w", err)
			}

			current := make([]offerdomain.CurrentOffer, 0, len(result.Added))
			for _, o := range result.Added {
				current = append(current, offerdomain.NewCurrentOffer(sourceName, snapTime, o))
			}
			if err := s.offerRepo.Insert(ctx, tx, current); err != nil {
				return fmt.Errorf("insert added offers: %w", err)
			}
		}

		for _, o := range result.Updated {
			if err := s.offerRepo.Update(ctx, tx, sourceName, snapTime, o); err != nil {
				return fmt.Errorf("update offer %s: %w", o.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) Updates(ctx context.Context) ([]domain.SnapshotLog, error) {
	return s.repo.ListLogs(ctx, s.db, updatesLimit)
}

func (s *Service) lockSource(sourceName string) func() {
	mu, _ := s.sources.LoadOrStore(sourceName, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}
