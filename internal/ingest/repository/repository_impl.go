package repository

import (
	"context"

	"github.com/flatwatch/flatwatch/internal/ingest/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) AppendLog(ctx context.Context, db *gorm.DB, row *domain.SnapshotLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO snapshot_logs (id, t, source_name, count) VALUES (?, ?, ?, ?)`,
		row.ID,
		row.T,
		row.SourceName,
		row.Count,
	).Error
}

func (r *repo) ListLogs(ctx context.Context, db *gorm.DB, limit int) ([]domain.SnapshotLog, error) {
	var rows []domain.SnapshotLog
	err := db.WithContext(ctx).Raw(
		`SELECT id, t, source_name, count FROM snapshot_logs ORDER BY t DESC LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
