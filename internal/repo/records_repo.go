// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file persists the two aggregation outputs: the
// per-swimmer best snapshot and the club record table.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/swim-records/internal/domain"
)

// ReplaceClubBests deletes every club best and inserts rows in batches.
// Run it inside a transaction so readers never see the empty table.
func ReplaceClubBests(ctx context.Context, db *gorm.DB, rows []domain.ClubPerformanceBest, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	tx := db.WithContext(ctx)
	if err := tx.Where("1 = 1").Delete(&domain.ClubPerformanceBest{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// UpsertClubRecords inserts or overwrites one record per category. Existing
// categories keep their ID; categories absent from rows are left untouched.
func UpsertClubRecords(ctx context.Context, db *gorm.DB, rows []domain.ClubRecord, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "pool_length"}, {Name: "sex"}, {Name: "age_bracket"}, {Name: "event_code"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"time_seconds", "time_display", "swimmer_iuf", "swimmer_name",
				"competition_date", "competition_name", "best_id", "updated_at",
			}),
		}).
		CreateInBatches(rows, batchSize).Error
}

// RecordFilter narrows ListClubRecords; zero values match everything.
type RecordFilter struct {
	PoolLength int
	Sex        string
	AgeBracket int
	EventCode  string
}

func (f RecordFilter) apply(q *gorm.DB) *gorm.DB {
	if f.PoolLength != 0 {
		q = q.Where("pool_length = ?", f.PoolLength)
	}
	if f.Sex != "" {
		q = q.Where("sex = ?", f.Sex)
	}
	if f.AgeBracket != 0 {
		q = q.Where("age_bracket = ?", f.AgeBracket)
	}
	if f.EventCode != "" {
		q = q.Where("event_code = ?", f.EventCode)
	}
	return q
}

// ListClubRecords returns records matching f ordered by pool, sex, bracket, event.
func ListClubRecords(ctx context.Context, db *gorm.DB, f RecordFilter) ([]domain.ClubRecord, error) {
	var out []domain.ClubRecord
	err := f.apply(db.WithContext(ctx).Model(&domain.ClubRecord{})).
		Order("pool_length ASC, sex ASC, age_bracket ASC, event_code ASC").
		Find(&out).Error
	return out, err
}

// ListSwimmerBests returns the current personal bests of one swimmer.
func ListSwimmerBests(ctx context.Context, db *gorm.DB, iuf string) ([]domain.ClubPerformanceBest, error) {
	var out []domain.ClubPerformanceBest
	err := db.WithContext(ctx).
		Where("swimmer_iuf = ?", iuf).
		Order("pool_length ASC, age_bracket ASC, event_code ASC").
		Find(&out).Error
	return out, err
}
