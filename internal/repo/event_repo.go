package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/swim-records/internal/domain"
)

// SeedEventCodes inserts rows whose label is not yet mapped. Existing
// mappings are never overwritten, so operator edits survive restarts.
func SeedEventCodes(ctx context.Context, db *gorm.DB, rows []domain.EventCode) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "label"}}, DoNothing: true}).
		CreateInBatches(rows, DefaultBatchSize)
	return int(res.RowsAffected), res.Error
}

// ListEventCodes returns the whole mapping table.
func ListEventCodes(ctx context.Context, db *gorm.DB) ([]domain.EventCode, error) {
	var out []domain.EventCode
	err := db.WithContext(ctx).Order("label ASC").Find(&out).Error
	return out, err
}
