// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for scraped
// Performance rows.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/swim-records/internal/domain"
)

// DefaultBatchSize is the number of rows sent per INSERT statement.
const DefaultBatchSize = 100

// dedupColumns mirrors the ux_performance_dedup unique index.
var dedupColumns = []clause.Column{
	{Name: "swimmer_iuf"},
	{Name: "event_code"},
	{Name: "pool_length"},
	{Name: "competition_date"},
	{Name: "time_seconds"},
}

// InsertPerformances writes rows in chunks of batchSize, skipping rows that
// collide with an existing dedup key. It returns how many rows were actually
// inserted. A chunk that fails aborts the call; earlier chunks stay written.
func InsertPerformances(ctx context.Context, db *gorm.DB, rows []domain.Performance, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		res := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: dedupColumns, DoNothing: true}).
			Create(&chunk)
		if res.Error != nil {
			return inserted, res.Error
		}
		inserted += int(res.RowsAffected)
	}
	return inserted, nil
}

// ListPerformances returns every stored performance in a stable order.
func ListPerformances(ctx context.Context, db *gorm.DB) ([]domain.Performance, error) {
	var out []domain.Performance
	err := db.WithContext(ctx).
		Order("swimmer_iuf ASC, event_code ASC, pool_length ASC, competition_date ASC, time_seconds ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountPerformances returns the number of performances stored for iuf.
func CountPerformances(ctx context.Context, db *gorm.DB, iuf string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Performance{}).
		Where("swimmer_iuf = ?", iuf).
		Count(&total).Error
	return total, err
}
