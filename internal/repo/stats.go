// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
)

// RecordsStats returns the number of club records matching f and the
// greatest UpdatedAt among them. maxUpdatedAt is nil when nothing matches.
func RecordsStats(ctx context.Context, db *gorm.DB, f RecordFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := f.apply(db.WithContext(ctx).Model(&domain.ClubRecord{}))

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ImportLogsStats returns the total number of log rows and the latest
// change among them (FinishedAt when set, else CreatedAt).
func ImportLogsStats(ctx context.Context, db *gorm.DB) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ImportLog{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var created struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&created).Error; err != nil {
		return 0, nil, err
	}
	var finished struct {
		FinishedAt *time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.ImportLog{}).
		Where("finished_at IS NOT NULL").
		Select("finished_at").Order("finished_at DESC").Limit(1).
		Scan(&finished).Error; err != nil {
		return 0, nil, err
	}

	ts := created.CreatedAt
	if finished.FinishedAt != nil && finished.FinishedAt.After(ts) {
		ts = *finished.FinishedAt
	}
	return count, &ts, nil
}
