package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/swim-records/internal/http/middleware"
	"github.com/tbourn/swim-records/internal/services"
)

// ImportRequest is the optional body of the trigger endpoint.
type ImportRequest struct {
	// "recalculate" recomputes records from stored data; anything else runs a full import
	Mode string `json:"mode" example:"recalculate"`
}

// ImportResponse wraps the run summary.
type ImportResponse struct {
	Summary services.Summary `json:"summary"`
}

// TriggerImport godoc
// @ID          triggerImport
// @Summary     Run an import
// @Description Full mode scrapes every active swimmer, ingests new performances and recomputes
// @Description club records; it counts against the caller's monthly quota. Recalculate mode only
// @Description recomputes records from stored performances. A missing or malformed body means full.
// @Tags        Import
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ImportRequest  false  "Run mode"
// @Success     200   {object}  handlers.ImportResponse
// @Failure     401   {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     403   {object}  handlers.ErrorResponse  "Role not allowed"
// @Failure     405   {object}  handlers.ErrorResponse  "Method not allowed"
// @Failure     409   {object}  handlers.ErrorResponse  "A run is already in progress"
// @Failure     413   {object}  handlers.ErrorResponse  "Request body too large"
// @Failure     429   {object}  handlers.ErrorResponse  "Monthly quota exceeded"
// @Failure     500   {object}  handlers.ErrorResponse  "Infrastructure failure"
// @Router      /import [post]
func (h *Handlers) TriggerImport(c *gin.Context) {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
		return
	}

	var req ImportRequest
	// The body is optional and advisory: unreadable JSON selects a full run,
	// but a truncated body is rejected rather than guessed at.
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge, "Request body too large")
			return
		}
	}
	mode := services.ParseMode(req.Mode)

	// A run outlives the request: a dropped client or proxy timeout must not
	// stop it partway through the roster.
	ctx := context.WithoutCancel(middleware.RequestContext(c))
	sum, err := h.runner.Run(ctx, services.Caller{UserID: id.UserID, Role: id.Role}, mode)
	switch {
	case err == nil:
		ok(c, ImportResponse{Summary: sum})
	case errors.Is(err, services.ErrForbiddenRole):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "Forbidden: role "+strconv.Quote(id.Role)+" may not trigger imports")
	case errors.Is(err, services.ErrQuotaExceeded):
		fail(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded, err.Error())
	case errors.Is(err, services.ErrRunInProgress):
		fail(c, http.StatusConflict, ErrCodeRunInProgress, err.Error())
	case errors.Is(err, services.ErrUnknownMode):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeImportFailed, "Internal error: "+err.Error())
	}
}

