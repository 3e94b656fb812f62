package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/services"
	"github.com/tbourn/swim-records/internal/utils"
)

// ImportRunner triggers one import run.
type ImportRunner interface {
	Run(ctx context.Context, caller services.Caller, mode string) (services.Summary, error)
}

// RecordsReader serves the aggregation outputs.
type RecordsReader interface {
	Records(ctx context.Context, f repo.RecordFilter) ([]domain.ClubRecord, error)
	SwimmerBests(ctx context.Context, iuf string) (*domain.Swimmer, []domain.ClubPerformanceBest, error)
}

// AuditReader pages through the import log.
type AuditReader interface {
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ImportLog, int64, error)
}

// Handlers groups the API endpoints over their services.
type Handlers struct {
	runner  ImportRunner
	records RecordsReader
	audit   AuditReader
}

// New returns Handlers bound to the given services.
func New(runner ImportRunner, records RecordsReader, audit AuditReader) *Handlers {
	return &Handlers{runner: runner, records: records, audit: audit}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination reads page and page_size, defaulting to 1 and 20 and
// capping page_size at 100.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), utils.DefaultPageSize),
	)
}
