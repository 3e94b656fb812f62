package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/records"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/services"
)

// RecordsResponse lists club records.
type RecordsResponse struct {
	Records []domain.ClubRecord `json:"records"`
}

// SwimmerBestsResponse is a swimmer with their current personal bests.
type SwimmerBestsResponse struct {
	Swimmer domain.Swimmer               `json:"swimmer"`
	Bests   []domain.ClubPerformanceBest `json:"bests"`
}

// parseRecordFilter validates the optional record filters.
func parseRecordFilter(c *gin.Context) (repo.RecordFilter, error) {
	var f repo.RecordFilter

	if raw := strings.TrimSpace(c.Query("pool_length")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || (n != domain.Pool25 && n != domain.Pool50) {
			return f, errors.New("pool_length must be 25 or 50")
		}
		f.PoolLength = n
	}
	if raw := c.Query("sex"); strings.TrimSpace(raw) != "" {
		sex, ok := records.NormalizeSex(raw)
		if !ok {
			return f, errors.New("sex must be M or F")
		}
		f.Sex = sex
	}
	if raw := strings.TrimSpace(c.Query("age_bracket")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < records.MinAgeBracket || n > records.MaxAgeBracket {
			return f, fmt.Errorf("age_bracket must be between %d and %d", records.MinAgeBracket, records.MaxAgeBracket)
		}
		f.AgeBracket = n
	}
	f.EventCode = strings.ToUpper(strings.TrimSpace(c.Query("event_code")))
	return f, nil
}

// ListRecords godoc
// @ID          listRecords
// @Summary     List club records
// @Description Club records ordered by pool length, sex, age bracket and event. Supports a weak
// @Description ETag via If-None-Match.
// @Tags        Records
// @Produce     json
// @Security    BearerAuth
// @Param       pool_length    query   int     false  "25 or 50"
// @Param       sex            query   string  false  "M or F"              Enums(M, F)
// @Param       age_bracket    query   int     false  "Age bracket"         minimum(8) maximum(17)
// @Param       event_code     query   string  false  "Event code"          example(100_FREE)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.RecordsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid filter"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /records [get]
func (h *Handlers) ListRecords(c *gin.Context) {
	f, err := parseRecordFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidFilter, err.Error())
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.records.(*services.RecordsService); ok {
		db = svc.DB
	}
	if db != nil {
		if count, latest, err := repo.RecordsStats(ctx, db, f); err == nil {
			scope := fmt.Sprintf("records:%d:%s:%d:%s", f.PoolLength, f.Sex, f.AgeBracket, f.EventCode)
			if weakETag(c, scope, count, latest) {
				return
			}
		}
	}

	items, err := h.records.Records(ctx, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Internal error: "+err.Error())
		return
	}
	if items == nil {
		items = []domain.ClubRecord{}
	}
	ok(c, RecordsResponse{Records: items})
}

// SwimmerBests godoc
// @ID          swimmerBests
// @Summary     Personal bests of a swimmer
// @Description Current best per event, pool length and age bracket for one active swimmer.
// @Tags        Records
// @Produce     json
// @Security    BearerAuth
// @Param       iuf  path  string  true  "Federation licence number"  example(1234567)
// @Success     200  {object}  handlers.SwimmerBestsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Swimmer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /swimmers/{iuf}/bests [get]
func (h *Handlers) SwimmerBests(c *gin.Context) {
	iuf := strings.TrimSpace(c.Param("iuf"))
	if iuf == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "iuf required")
		return
	}

	sw, bests, err := h.records.SwimmerBests(c.Request.Context(), iuf)
	switch {
	case errors.Is(err, services.ErrSwimmerNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "swimmer not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Internal error: "+err.Error())
		return
	}
	if bests == nil {
		bests = []domain.ClubPerformanceBest{}
	}
	ok(c, SwimmerBestsResponse{Swimmer: *sw, Bests: bests})
}
