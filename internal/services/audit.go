package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/utils"
)

// AuditLogger tracks each swimmer step of a full run as an ImportLog row.
type AuditLogger struct {
	DB *gorm.DB
}

// Start opens a running log row for swimmer s.
func (a *AuditLogger) Start(ctx context.Context, triggeredBy string, s domain.Swimmer) (*domain.ImportLog, error) {
	return repo.CreateImportLog(ctx, a.DB, triggeredBy, s.IUF, s.Name)
}

// Succeed finalizes a log with its counts.
func (a *AuditLogger) Succeed(ctx context.Context, id string, found, imported int) error {
	return repo.FinishImportLog(ctx, a.DB, id, repo.LogOutcome{
		Status: domain.StatusSuccess, Found: found, Imported: imported,
	})
}

// Fail finalizes a log with the failure message.
func (a *AuditLogger) Fail(ctx context.Context, id string, found int, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return repo.FinishImportLog(ctx, a.DB, id, repo.LogOutcome{
		Status: domain.StatusError, Found: found, Err: msg,
	})
}

// ListPage returns a page of logs (newest first) and the total row count.
// Out-of-range page and pageSize are clamped.
func (a *AuditLogger) ListPage(ctx context.Context, page, pageSize int) ([]domain.ImportLog, int64, error) {
	page, pageSize = utils.ClampPage(page, pageSize)

	total, err := repo.CountImportLogs(ctx, a.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ImportLog{}, 0, nil
	}
	items, err := repo.ListImportLogsPage(ctx, a.DB, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}
