package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/services"
)

// ImportLogsResponse wraps a page of import logs.
type ImportLogsResponse struct {
	Logs       []domain.ImportLog `json:"logs"`
	Pagination Pagination         `json:"pagination"`
}

// ListImportLogs godoc
// @ID          listImportLogs
// @Summary     List import logs (paginated)
// @Description Audit trail of per-swimmer import steps, newest first. Supports a weak ETag.
// @Tags        Import
// @Produce     json
// @Security    BearerAuth
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ImportLogsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /import-logs [get]
func (h *Handlers) ListImportLogs(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	var db *gorm.DB
	if svc, ok := h.audit.(*services.AuditLogger); ok {
		db = svc.DB
	}
	if db != nil {
		if count, latest, err := repo.ImportLogsStats(ctx, db); err == nil {
			if weakETag(c, fmt.Sprintf("import-logs:%d:%d", page, pageSize), count, latest) {
				return
			}
		}
	}

	items, total, err := h.audit.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Internal error: "+err.Error())
		return
	}
	ok(c, ImportLogsResponse{Logs: items, Pagination: newPagination(page, pageSize, total)})
}
