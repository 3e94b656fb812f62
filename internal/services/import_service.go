package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/ffn"
	"github.com/tbourn/swim-records/internal/observability"
	"github.com/tbourn/swim-records/internal/repo"
)

// DefaultSwimmerDelay is the pause between two swimmers of a full run.
const DefaultSwimmerDelay = 1500 * time.Millisecond

// Fetcher downloads the results pages of one swimmer, one per pool length.
// Pool lengths that fail are left out; only context errors are returned.
type Fetcher interface {
	FetchSwimmer(ctx context.Context, iuf string) ([]ffn.Page, error)
}

// Summary is the outcome of one run.
type Summary struct {
	Imported          int    `json:"imported"`
	Errors            int    `json:"errors"`
	SwimmersProcessed int    `json:"swimmers_processed"`
	Mode              string `json:"mode,omitempty"`
}

// ParseMode maps a requested mode to a run mode: "recalculate" selects the
// recompute-only mode, anything else a full run.
func ParseMode(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), domain.ModeRecalculate) {
		return domain.ModeRecalculate
	}
	return domain.ModeFull
}

// ImportService runs the import state machine.
//
// A full run checks the role and the quota, then for each swimmer opens a
// log row, fetches, parses, ingests, finishes the log, stamps the swimmer and
// pauses; a single recompute closes the run. A recalculate run checks the
// role and recomputes.
//
// Swimmers are processed one at a time. Runs are serialized within the
// process; a second Run while one is active fails with ErrRunInProgress.
// Callers that must not cut a run short (the HTTP trigger) pass a context
// without cancellation; a cancelled ctx stops the run between swimmers and
// finalizes the current swimmer's log as an error.
type ImportService struct {
	DB      *gorm.DB
	Fetcher Fetcher
	Ingest  *IngestService
	Records *RecordsService
	Quota   *QuotaLimiter
	Audit   *AuditLogger

	// Delay is the pause between two swimmers.
	Delay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	mu    sync.Mutex
}

// NewImportService wires the run pipeline over db.
func NewImportService(db *gorm.DB, f Fetcher, batchSize int, quota *QuotaLimiter, delay time.Duration) *ImportService {
	return &ImportService{
		DB:      db,
		Fetcher: f,
		Ingest:  &IngestService{DB: db, BatchSize: batchSize},
		Records: &RecordsService{DB: db, BatchSize: batchSize},
		Quota:   quota,
		Audit:   &AuditLogger{DB: db},
		Delay:   delay,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

// Run executes one run for caller in the given mode.
func (s *ImportService) Run(ctx context.Context, caller Caller, mode string) (Summary, error) {
	if err := AuthorizeRole(caller.Role); err != nil {
		return Summary{}, err
	}
	if mode != domain.ModeFull && mode != domain.ModeRecalculate {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if !s.mu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer s.mu.Unlock()

	ctx, span := otel.Tracer("services/ImportService").Start(ctx, "Run",
		trace.WithAttributes(
			attribute.String("run.mode", mode),
			attribute.String("user.id", caller.UserID),
			attribute.String("user.role", caller.Role),
		),
	)
	defer span.End()

	var (
		sum Summary
		err error
	)
	if mode == domain.ModeRecalculate {
		sum, err = s.recalculate(ctx)
	} else {
		sum, err = s.full(ctx, caller)
	}

	lg := loggerFrom(ctx).With().Str("mode", mode).Str("user_id", caller.UserID).Logger()
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		observability.RunFinished(mode, "rejected")
		lg.Warn().Err(err).Msg("import rejected")
	case err != nil:
		observability.RunFinished(mode, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		lg.Error().Err(err).Msg("import aborted")
	default:
		observability.RunFinished(mode, "success")
		span.SetAttributes(
			attribute.Int("run.imported", sum.Imported),
			attribute.Int("run.errors", sum.Errors),
			attribute.Int("run.swimmers", sum.SwimmersProcessed),
		)
		lg.Info().
			Int("imported", sum.Imported).
			Int("errors", sum.Errors).
			Int("swimmers_processed", sum.SwimmersProcessed).
			Msg("import finished")
	}
	return sum, err
}

func (s *ImportService) recalculate(ctx context.Context) (Summary, error) {
	snap, err := s.Records.Recompute(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("recompute: %w", err)
	}
	return Summary{SwimmersProcessed: snap.Swimmers, Mode: domain.ModeRecalculate}, nil
}

func (s *ImportService) full(ctx context.Context, caller Caller) (Summary, error) {
	if err := s.Quota.Check(ctx, caller); err != nil {
		return Summary{}, err
	}

	roster, err := repo.ListActiveSwimmers(ctx, s.DB)
	if err != nil {
		return Summary{}, fmt.Errorf("list swimmers: %w", err)
	}

	var sum Summary
	first := true
	for _, sw := range roster {
		sw.IUF = strings.TrimSpace(sw.IUF)
		if sw.IUF == "" {
			continue
		}
		if !first {
			if err := s.pause(ctx); err != nil {
				return sum, err
			}
		}
		first = false
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		imported, swErr, err := s.importSwimmer(ctx, caller, sw)
		if err != nil {
			return sum, err
		}
		sum.SwimmersProcessed++
		if swErr != nil {
			sum.Errors++
			continue
		}
		sum.Imported += imported
	}

	if _, err := s.Records.Recompute(ctx); err != nil {
		return sum, fmt.Errorf("recompute: %w", err)
	}
	return sum, nil
}

// importSwimmer runs one audited fetch/parse/ingest step. swErr is a failure
// confined to this swimmer (already written to its log); err aborts the run.
func (s *ImportService) importSwimmer(ctx context.Context, caller Caller, sw domain.Swimmer) (imported int, swErr, err error) {
	lg := loggerFrom(ctx).With().Str("iuf", sw.IUF).Logger()

	entry, err := s.Audit.Start(ctx, caller.UserID, sw)
	if err != nil {
		return 0, nil, fmt.Errorf("start import log: %w", err)
	}

	found, imported, stepErr := s.fetchAndIngest(ctx, sw.IUF)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// An opened log row never stays running.
		cause := fmt.Errorf("run interrupted: %w", ctxErr)
		if err := s.Audit.Fail(context.WithoutCancel(ctx), entry.ID, found, cause); err != nil {
			lg.Error().Err(err).Msg("finish interrupted import log")
		}
		return 0, nil, ctxErr
	}
	if stepErr != nil {
		lg.Error().Err(stepErr).Str("status", string(domain.StatusError)).Msg("swimmer import failed")
		if err := s.Audit.Fail(ctx, entry.ID, found, stepErr); err != nil {
			return 0, nil, fmt.Errorf("finish import log: %w", err)
		}
		return 0, stepErr, nil
	}

	if err := s.Audit.Succeed(ctx, entry.ID, found, imported); err != nil {
		return 0, nil, fmt.Errorf("finish import log: %w", err)
	}
	if err := repo.MarkImported(ctx, s.DB, sw.ID, s.clock()); err != nil {
		return 0, nil, fmt.Errorf("mark swimmer imported: %w", err)
	}
	lg.Info().
		Str("status", string(domain.StatusSuccess)).
		Int("found", found).
		Int("imported", imported).
		Msg("swimmer imported")
	return imported, nil, nil
}

// fetchAndIngest turns panics from parsing untrusted markup into errors.
func (s *ImportService) fetchAndIngest(ctx context.Context, iuf string) (found, imported int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	pages, err := s.Fetcher.FetchSwimmer(ctx, iuf)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch: %w", err)
	}
	rows := ffn.ParsePages(iuf, pages)
	res, err := s.Ingest.Ingest(ctx, rows)
	if err != nil {
		return res.Found, 0, err
	}
	return res.Found, res.Imported, nil
}

func (s *ImportService) pause(ctx context.Context) error {
	if s.sleep == nil {
		return sleepCtx(ctx, s.Delay)
	}
	return s.sleep(ctx, s.Delay)
}

func (s *ImportService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// loggerFrom returns the logger carried by ctx, or the global one.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
