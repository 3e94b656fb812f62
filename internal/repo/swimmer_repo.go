// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Swimmer
// roster.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a swimmer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSwimmer inserts s, assigning a UUID when ID is empty.
func CreateSwimmer(ctx context.Context, db *gorm.DB, s *domain.Swimmer) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// ListActiveSwimmers returns every active swimmer ordered by name then ID,
// including those without an IUF; callers decide how to treat them.
func ListActiveSwimmers(ctx context.Context, db *gorm.DB) ([]domain.Swimmer, error) {
	var out []domain.Swimmer
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC, id ASC").
		Find(&out).Error
	return out, err
}

// GetSwimmerByIUF fetches an active swimmer by federation ID, or ErrNotFound.
func GetSwimmerByIUF(ctx context.Context, db *gorm.DB, iuf string) (*domain.Swimmer, error) {
	var s domain.Swimmer
	err := db.WithContext(ctx).
		Where("iuf = ? AND active = ?", iuf, true).
		Order("id ASC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkImported stamps LastImportedAt on the swimmer with the given ID.
// Returns ErrNotFound if no row matched.
func MarkImported(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Swimmer{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_imported_at": at.UTC(), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
