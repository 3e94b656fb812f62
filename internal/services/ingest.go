package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/ffn"
	"github.com/tbourn/swim-records/internal/observability"
	"github.com/tbourn/swim-records/internal/repo"
)

// IngestResult reports what one Ingest call did.
type IngestResult struct {
	// Found is the number of valid, distinct rows offered.
	Found int
	// Imported is the number of rows actually inserted.
	Imported int
	// Existing is the number of rows already stored.
	Existing int
	// Rejected counts rows dropped by validation.
	Rejected int
}

// IngestService writes parsed performances into the store. Rows whose dedup
// key is already stored are ignored, never updated.
type IngestService struct {
	DB        *gorm.DB
	BatchSize int
}

// Ingest validates rows, removes in-batch duplicates and inserts the rest in
// batches of BatchSize.
func (s *IngestService) Ingest(ctx context.Context, rows []domain.Performance) (IngestResult, error) {
	ctx, span := otel.Tracer("services/IngestService").Start(ctx, "Ingest",
		trace.WithAttributes(attribute.Int("rows.in", len(rows))),
	)
	defer span.End()

	clean, rejected := sanitize(rows)
	res := IngestResult{Found: len(clean), Rejected: rejected}
	if len(clean) == 0 {
		return res, nil
	}

	n, err := repo.InsertPerformances(ctx, s.DB, clean, s.BatchSize)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("insert performances: %w", err)
	}
	res.Imported = n
	res.Existing = res.Found - n
	observability.PerformancesImported(n)
	span.SetAttributes(attribute.Int("rows.imported", n))
	return res, nil
}

type dedupKey struct {
	iuf, event, date string
	pool             int
	hundredths       int64
}

// sanitize is the boundary check between scraped rows and the store.
func sanitize(rows []domain.Performance) ([]domain.Performance, int) {
	out := make([]domain.Performance, 0, len(rows))
	seen := make(map[dedupKey]struct{}, len(rows))
	rejected := 0
	for _, p := range rows {
		p.SwimmerIUF = strings.TrimSpace(p.SwimmerIUF)
		p.EventCode = strings.TrimSpace(p.EventCode)
		if p.SwimmerIUF == "" || p.EventCode == "" ||
			(p.PoolLength != domain.Pool25 && p.PoolLength != domain.Pool50) ||
			math.IsNaN(p.TimeSeconds) || math.IsInf(p.TimeSeconds, 0) || p.TimeSeconds <= 0 {
			rejected++
			continue
		}
		h := int64(math.Round(p.TimeSeconds * 100))
		p.TimeSeconds = float64(h) / 100
		k := dedupKey{p.SwimmerIUF, p.EventCode, p.CompetitionDate, p.PoolLength, h}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.TimeDisplay == "" {
			p.TimeDisplay = ffn.FormatTimeDisplay(p.TimeSeconds)
		}
		if p.Source == "" {
			p.Source = domain.SourceFFN
		}
		out = append(out, p)
	}
	return out, rejected
}
