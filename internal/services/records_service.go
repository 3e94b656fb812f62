package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/observability"
	"github.com/tbourn/swim-records/internal/records"
	"github.com/tbourn/swim-records/internal/repo"
)

// RecordsService recomputes and serves personal bests and club records.
type RecordsService struct {
	DB        *gorm.DB
	BatchSize int
}

// Recompute rebuilds the best snapshot and upserts club records from the
// current store contents. Both writes share one transaction.
func (s *RecordsService) Recompute(ctx context.Context) (records.Snapshot, error) {
	ctx, span := otel.Tracer("services/RecordsService").Start(ctx, "Recompute")
	defer span.End()
	start := time.Now()

	swimmers, err := repo.ListActiveSwimmers(ctx, s.DB)
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("list swimmers: %w", err)
	}
	perfs, err := repo.ListPerformances(ctx, s.DB)
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("list performances: %w", err)
	}
	codes, err := repo.ListEventCodes(ctx, s.DB)
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("list event codes: %w", err)
	}

	snap := records.Compute(perfs, swimmers, records.NewEventTable(codes))

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ReplaceClubBests(ctx, tx, snap.Bests, s.BatchSize); err != nil {
			return fmt.Errorf("replace club bests: %w", err)
		}
		if err := repo.UpsertClubRecords(ctx, tx, snap.Records, s.BatchSize); err != nil {
			return fmt.Errorf("upsert club records: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return records.Snapshot{}, err
	}

	observability.ObserveRecompute(time.Since(start))
	span.SetAttributes(
		attribute.Int("bests", len(snap.Bests)),
		attribute.Int("records", len(snap.Records)),
	)
	return snap, nil
}

// Records lists club records matching f.
func (s *RecordsService) Records(ctx context.Context, f repo.RecordFilter) ([]domain.ClubRecord, error) {
	return repo.ListClubRecords(ctx, s.DB, f)
}

// SwimmerBests lists the personal bests of the active swimmer with the given IUF.
func (s *RecordsService) SwimmerBests(ctx context.Context, iuf string) (*domain.Swimmer, []domain.ClubPerformanceBest, error) {
	sw, err := repo.GetSwimmerByIUF(ctx, s.DB, iuf)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrSwimmerNotFound
		}
		return nil, nil, err
	}
	bests, err := repo.ListSwimmerBests(ctx, s.DB, iuf)
	if err != nil {
		return nil, nil, err
	}
	return sw, bests, nil
}
