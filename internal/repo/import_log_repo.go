// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ImportLog
// audit trail.
//
// Rows are created in StatusRunning and finalized exactly once. FinishImportLog
// only touches rows still in a non-terminal state, so a finished entry can
// never be rewritten.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
)

// ErrLogFinalized is returned when finishing a log that already reached a
// terminal status.
var ErrLogFinalized = errors.New("import log already finalized")

// CreateImportLog inserts a running log row for one swimmer.
func CreateImportLog(ctx context.Context, db *gorm.DB, triggeredBy, iuf, name string) (*domain.ImportLog, error) {
	now := time.Now().UTC()
	l := &domain.ImportLog{
		ID:          uuid.NewString(),
		TriggeredBy: triggeredBy,
		SwimmerIUF:  iuf,
		SwimmerName: name,
		Status:      domain.StatusRunning,
		StartedAt:   &now,
		CreatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// LogOutcome is the terminal state written by FinishImportLog.
type LogOutcome struct {
	Status   domain.ImportStatus
	Found    int
	Imported int
	Err      string
}

// FinishImportLog moves a pending or running log to its terminal status.
// Returns ErrNotFound when id is unknown and ErrLogFinalized when the row is
// already terminal.
func FinishImportLog(ctx context.Context, db *gorm.DB, id string, out LogOutcome) error {
	if !out.Status.Terminal() {
		return errors.New("finish import log: non-terminal status " + string(out.Status))
	}
	updates := map[string]any{
		"status":                out.Status,
		"performances_found":    out.Found,
		"performances_imported": out.Imported,
		"finished_at":           time.Now().UTC(),
	}
	if out.Err != "" {
		updates["error_message"] = out.Err
	}

	res := db.WithContext(ctx).
		Model(&domain.ImportLog{}).
		Where("id = ? AND status IN ?", id, []domain.ImportStatus{domain.StatusPending, domain.StatusRunning}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := db.WithContext(ctx).Model(&domain.ImportLog{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrLogFinalized
}

// CountImportLogsSince returns how many log rows userID created at or after since.
func CountImportLogsSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ImportLog{}).
		Where("triggered_by = ? AND created_at >= ?", userID, since.UTC()).
		Count(&total).Error
	return total, err
}

// CountImportLogs returns the total number of log rows.
func CountImportLogs(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ImportLog{}).Count(&total).Error
	return total, err
}

// ListImportLogsPage returns a page of logs, newest first.
func ListImportLogsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ImportLog, error) {
	var out []domain.ImportLog
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
