package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	"gorm.io/gorm"
)

// SnapshotLog is the audit record of one snapshot upload. It is written
// before the merge transaction and survives a merge rollback.
type SnapshotLog struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	T          time.Time    `gorm:"column:t;not null"`
	SourceName string       `gorm:"column:source_name;type:text;not null"`
	Count      int          `gorm:"column:count;not null"`
}

func (SnapshotLog) TableName() string { return "snapshot_logs" }

// MergeResult partitions one ingested snapshot against the source's prior
// state. The four lists are a strict cover of old and new ids.
type MergeResult struct {
	Added   []offerdomain.Offer
	Removed []offerdomain.Offer
	Same    []offerdomain.Offer
	Updated []offerdomain.Offer
}

// Service is the snapshot ingestion entry point.
type Service interface {
	// Ingest merges a full-state snapshot from one source. snapshotTimeISO
	// is an RFC 3339 timestamp recorded on every touched row.
	Ingest(ctx context.Context, sourceName string, items []map[string]any, snapshotTimeISO string) (*MergeResult, error)
	// Updates returns the most recent snapshot log entries, newest first.
	Updates(ctx context.Context) ([]SnapshotLog, error)
}

type Repository interface {
	AppendLog(ctx context.Context, db *gorm.DB, row *SnapshotLog) error
	ListLogs(ctx context.Context, db *gorm.DB, limit int) ([]SnapshotLog, error)
}

var (
	ErrInvalidSource       = errors.New("invalid_source")
	ErrInvalidSnapshotTime = errors.New("invalid_snapshot_time")
)
