package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/ffn"
	"github.com/tbourn/swim-records/internal/http/middleware"
	"github.com/tbourn/swim-records/internal/records"
	"github.com/tbourn/swim-records/internal/repo"
	"github.com/tbourn/swim-records/internal/services"
)

// ----- Helpers -----

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeRunner records the last call and returns canned results.
type fakeRunner struct {
	sum    services.Summary
	err    error
	caller services.Caller
	mode   string
	calls  int
}

func (f *fakeRunner) Run(_ context.Context, c services.Caller, mode string) (services.Summary, error) {
	f.calls++
	f.caller, f.mode = c, mode
	return f.sum, f.err
}

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("", middleware.DevIdentity())
	api.POST("/import", h.TriggerImport)
	api.GET("/records", h.ListRecords)
	api.GET("/swimmers/:iuf/bests", h.SwimmerBests)
	api.GET("/import-logs", h.ListImportLogs)
	return r
}

func do(r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.HeaderUserID, "coach-1")
	req.Header.Set(middleware.HeaderUserRole, "coach")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body: %v (%s)", err, w.Body.String())
	}
	return e
}

// ----- Import trigger -----

func TestTriggerImport_ModeSelection(t *testing.T) {
	run := &fakeRunner{sum: services.Summary{Imported: 12, Errors: 1, SwimmersProcessed: 4}}
	r := newRouter(New(run, nil, nil))

	cases := []struct {
		body string
		want string
	}{
		{"", domain.ModeFull},
		{`{"mode":"recalculate"}`, domain.ModeRecalculate},
		{`{"mode":"RECALCULATE"}`, domain.ModeRecalculate},
		{`{"mode":"everything"}`, domain.ModeFull},
		{`{not json`, domain.ModeFull},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, "/import", tc.body, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("body %q: status %d (%s)", tc.body, w.Code, w.Body.String())
		}
		if run.mode != tc.want {
			t.Fatalf("body %q: mode = %q; want %q", tc.body, run.mode, tc.want)
		}
	}
	if run.caller != (services.Caller{UserID: "coach-1", Role: "coach"}) {
		t.Fatalf("caller = %+v", run.caller)
	}

	w := do(r, http.MethodPost, "/import", "", nil)
	var resp map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	s := resp["summary"]
	if s["imported"] != float64(12) || s["errors"] != float64(1) || s["swimmers_processed"] != float64(4) {
		t.Fatalf("summary = %v", s)
	}
	if _, has := s["mode"]; has {
		t.Fatalf("mode must be omitted in full mode: %v", s)
	}
}

func TestTriggerImport_ErrorMapping(t *testing.T) {
	quota := fmt.Errorf("%w: 3 of 3 imports used this month", services.ErrQuotaExceeded)
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"forbidden", services.ErrForbiddenRole, http.StatusForbidden, ErrCodeForbidden, `Forbidden: role "coach" may not trigger imports`},
		{"quota", quota, http.StatusTooManyRequests, ErrCodeQuotaExceeded, quota.Error()},
		{"busy", services.ErrRunInProgress, http.StatusConflict, ErrCodeRunInProgress, services.ErrRunInProgress.Error()},
		{"mode", services.ErrUnknownMode, http.StatusBadRequest, ErrCodeBadRequest, services.ErrUnknownMode.Error()},
		{"infra", errors.New("list swimmers: disk I/O error"), http.StatusInternalServerError, ErrCodeImportFailed, "Internal error: list swimmers: disk I/O error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(New(&fakeRunner{err: tc.err}, nil, nil))
			w := do(r, http.MethodPost, "/import", "", map[string]string{"X-Request-ID": "rid-" + tc.name})
			if w.Code != tc.status {
				t.Fatalf("status = %d; want %d", w.Code, tc.status)
			}
			e := decodeErr(t, w)
			if e.Code != tc.code || e.Error != tc.msg || e.RequestID != "rid-"+tc.name {
				t.Fatalf("envelope = %+v", e)
			}
		})
	}
}

func TestTriggerImport_NoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := &fakeRunner{}
	r := gin.New()
	r.POST("/import", New(run, nil, nil).TriggerImport)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/import", nil))
	if w.Code != http.StatusUnauthorized || run.calls != 0 {
		t.Fatalf("status = %d, calls = %d", w.Code, run.calls)
	}
}

// droppingFetcher cancels the request context on every fetch, like a client
// hanging up while the run is in progress.
type droppingFetcher struct {
	hangUp context.CancelFunc
	calls  []string
}

func (f *droppingFetcher) FetchSwimmer(ctx context.Context, iuf string) ([]ffn.Page, error) {
	f.calls = append(f.calls, iuf)
	f.hangUp()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := `<tr><td>100 NL</td><td>1:02.10</td><td>(12 ans)</td><td>10/01/2025</td></tr>`
	return []ffn.Page{{PoolLength: 25, HTML: "<table><tr><th>Épreuve</th><th>Temps</th></tr>" + row + "</table>"}}, nil
}

func TestTriggerImport_RunSurvivesClientDisconnect(t *testing.T) {
	db := newHandlerDB(t)
	ctx := context.Background()
	if _, err := repo.SeedEventCodes(ctx, db, records.DefaultEventCodes()); err != nil {
		t.Fatalf("seed event codes: %v", err)
	}
	for _, sw := range []domain.Swimmer{
		{ID: "s-1", IUF: "100", Name: "Alice", Sex: "F", Active: true},
		{ID: "s-2", IUF: "200", Name: "Berthe", Sex: "F", Active: true},
	} {
		sw := sw
		if err := repo.CreateSwimmer(ctx, db, &sw); err != nil {
			t.Fatalf("seed swimmer: %v", err)
		}
	}

	reqCtx, hangUp := context.WithCancel(ctx)
	defer hangUp()
	f := &droppingFetcher{hangUp: hangUp}
	svc := services.NewImportService(db, f, 100, services.NewQuotaLimiter(db, 3, 1), 0)
	r := newRouter(New(svc, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/import", nil).WithContext(reqCtx)
	req.Header.Set(middleware.HeaderUserID, "coach-1")
	req.Header.Set(middleware.HeaderUserRole, "coach")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Summary.SwimmersProcessed != 2 || resp.Summary.Errors != 0 || resp.Summary.Imported != 2 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
	if len(f.calls) != 2 {
		t.Fatalf("fetch calls = %v", f.calls)
	}

	var running int64
	db.Model(&domain.ImportLog{}).Where("status <> ?", domain.StatusSuccess).Count(&running)
	if running != 0 {
		t.Fatalf("%d import logs not finalized as success", running)
	}
	var recs int64
	db.Model(&domain.ClubRecord{}).Count(&recs)
	if recs != 1 {
		t.Fatalf("club records = %d; want 1 after recompute", recs)
	}
}

func TestTriggerImport_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	run := &fakeRunner{}
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 32)
		c.Next()
	}, middleware.DevIdentity())
	r.POST("/import", New(run, nil, nil).TriggerImport)

	body := `{"mode":"recalculate","pad":"` + strings.Repeat("x", 64) + `"}`
	w := do(r, http.MethodPost, "/import", body, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d; want 413", w.Code)
	}
	if e := decodeErr(t, w); e.Code != ErrCodeBodyTooLarge {
		t.Fatalf("envelope = %+v", e)
	}
	if run.calls != 0 {
		t.Fatalf("an oversized body must not start a run (mode %q)", run.mode)
	}

	// Within the cap the requested mode is honored.
	if w := do(r, http.MethodPost, "/import", `{"mode":"recalculate"}`, nil); w.Code != http.StatusOK || run.mode != domain.ModeRecalculate {
		t.Fatalf("status = %d, mode = %q", w.Code, run.mode)
	}
}

// ----- Read endpoints -----

func seedRecords(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	rows := []domain.ClubRecord{
		{ID: "r-1", PoolLength: 50, Sex: "F", AgeBracket: 12, EventCode: "100_FREE", TimeSeconds: 60.8, TimeDisplay: "1:00.80", SwimmerIUF: "200", SwimmerName: "B", CompetitionDate: "2025-03-15", BestID: "b-1", UpdatedAt: now},
		{ID: "r-2", PoolLength: 25, Sex: "M", AgeBracket: 10, EventCode: "50_FREE", TimeSeconds: 31.2, TimeDisplay: "31.20", SwimmerIUF: "100", SwimmerName: "A", CompetitionDate: "", BestID: "b-2", UpdatedAt: now},
		{ID: "r-3", PoolLength: 25, Sex: "F", AgeBracket: 12, EventCode: "50_BACK", TimeSeconds: 35.5, TimeDisplay: "35.50", SwimmerIUF: "200", SwimmerName: "B", CompetitionDate: "2025-01-10", BestID: "b-3", UpdatedAt: now},
	}
	if err := repo.UpsertClubRecords(ctx, db, rows, 0); err != nil {
		t.Fatalf("seed records: %v", err)
	}
}

func TestListRecords_FiltersOrderAndETag(t *testing.T) {
	db := newHandlerDB(t)
	seedRecords(t, db)
	r := newRouter(New(nil, &services.RecordsService{DB: db}, nil))

	w := do(r, http.MethodGet, "/records", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp RecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	var got []string
	for _, rec := range resp.Records {
		got = append(got, rec.ID)
	}
	if fmt.Sprint(got) != "[r-3 r-2 r-1]" {
		t.Fatalf("order = %v; want pool, sex, bracket, event", got)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	if w2 := do(r, http.MethodGet, "/records", "", map[string]string{"If-None-Match": etag}); w2.Code != http.StatusNotModified {
		t.Fatalf("conditional GET = %d; want 304", w2.Code)
	}

	w = do(r, http.MethodGet, "/records?pool_length=25&sex=h&age_bracket=10", "", nil)
	resp = RecordsResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Records) != 1 || resp.Records[0].ID != "r-2" {
		t.Fatalf("filtered = %+v", resp.Records)
	}
	if w.Header().Get("ETag") == etag {
		t.Fatalf("filtered result must not share the unfiltered ETag")
	}

	w = do(r, http.MethodGet, "/records?event_code=200_fly", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"records":[]`)) {
		t.Fatalf("empty result = %d %s", w.Code, w.Body.String())
	}
}

func TestListRecords_InvalidFilters(t *testing.T) {
	r := newRouter(New(nil, &services.RecordsService{DB: newHandlerDB(t)}, nil))
	for _, q := range []string{"pool_length=33", "pool_length=x", "sex=X", "age_bracket=7", "age_bracket=18"} {
		w := do(r, http.MethodGet, "/records?"+q, "", nil)
		if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeInvalidFilter {
			t.Fatalf("%s: status %d (%s)", q, w.Code, w.Body.String())
		}
	}
}

func TestSwimmerBests(t *testing.T) {
	db := newHandlerDB(t)
	ctx := context.Background()
	sw := domain.Swimmer{IUF: "100", Name: "A", Sex: "M", Active: true}
	if err := repo.CreateSwimmer(ctx, db, &sw); err != nil {
		t.Fatalf("seed swimmer: %v", err)
	}
	best := domain.ClubPerformanceBest{
		ID: "b-1", SwimmerIUF: "100", SwimmerName: "A", EventCode: "50_FREE", PoolLength: 25, Sex: "M",
		AgeBracket: 10, TimeSeconds: 31.2, TimeDisplay: "31.20", PerformanceID: "p-1",
	}
	if err := repo.ReplaceClubBests(ctx, db, []domain.ClubPerformanceBest{best}, 0); err != nil {
		t.Fatalf("seed bests: %v", err)
	}
	r := newRouter(New(nil, &services.RecordsService{DB: db}, nil))

	w := do(r, http.MethodGet, "/swimmers/100/bests", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp SwimmerBestsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Swimmer.IUF != "100" || len(resp.Bests) != 1 || resp.Bests[0].TimeDisplay != "31.20" {
		t.Fatalf("response = %+v", resp)
	}

	if w := do(r, http.MethodGet, "/swimmers/999/bests", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown swimmer = %d", w.Code)
	}
}

func TestListImportLogs_PaginationAndETag(t *testing.T) {
	db := newHandlerDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateImportLog(ctx, db, "coach-1", fmt.Sprint(100+i), "S"); err != nil {
			t.Fatalf("seed log: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	r := newRouter(New(nil, nil, &services.AuditLogger{DB: db}))

	w := do(r, http.MethodGet, "/import-logs?page=1&page_size=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var resp ImportLogsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	p := resp.Pagination
	if len(resp.Logs) != 2 || p.Total != 3 || p.TotalPages != 2 || !p.HasNext {
		t.Fatalf("page 1 = %d logs, %+v", len(resp.Logs), p)
	}
	if resp.Logs[0].SwimmerIUF != "102" {
		t.Fatalf("newest first expected, got %s", resp.Logs[0].SwimmerIUF)
	}

	etag := w.Header().Get("ETag")
	if w := do(r, http.MethodGet, "/import-logs?page=1&page_size=2", "", map[string]string{"If-None-Match": etag}); w.Code != http.StatusNotModified {
		t.Fatalf("conditional GET = %d", w.Code)
	}

	l, _ := repo.CreateImportLog(ctx, db, "coach-1", "103", "S")
	_ = repo.FinishImportLog(ctx, db, l.ID, repo.LogOutcome{Status: domain.StatusSuccess})
	if w := do(r, http.MethodGet, "/import-logs?page=1&page_size=2", "", map[string]string{"If-None-Match": etag}); w.Code != http.StatusOK {
		t.Fatalf("stale ETag must not match after a new log, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/import-logs?page=0&page_size=1000", "", nil)
	resp = ImportLogsResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 100 || len(resp.Logs) != 4 {
		t.Fatalf("clamped pagination = %+v (%d logs)", resp.Pagination, len(resp.Logs))
	}
}

func TestFail_LogsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/boom", func(c *gin.Context) { Fail(c, http.StatusInternalServerError, ErrCodeInternal, "Internal error: kaboom") })
	r.GET("/missing", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found") })

	w := do(r, http.MethodGet, "/boom", "", map[string]string{"X-Request-ID": "rid-500"})
	if e := decodeErr(t, w); w.Code != 500 || e.RequestID != "rid-500" || e.Error != "Internal error: kaboom" {
		t.Fatalf("500 envelope = %d %+v", w.Code, e)
	}
	w = do(r, http.MethodGet, "/missing", "", nil)
	if e := decodeErr(t, w); w.Code != 404 || e.Code != ErrCodeNotFound {
		t.Fatalf("404 envelope = %d %+v", w.Code, e)
	}
}
