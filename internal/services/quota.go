package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/repo"
)

// Unlimited disables the monthly quota for a role.
const Unlimited = -1

// Caller is the identity a run is triggered with.
type Caller struct {
	UserID string
	Role   string
}

// AuthorizeRole allows admins and coaches to trigger runs.
func AuthorizeRole(role string) error {
	switch role {
	case domain.RoleAdmin, domain.RoleCoach:
		return nil
	}
	return ErrForbiddenRole
}

// QuotaLimiter caps full runs per user and calendar month (UTC). Each import
// log row the user created this month counts as one use.
type QuotaLimiter struct {
	DB *gorm.DB
	// Coach is the monthly quota for coaches; Default applies to other
	// non-admin roles. Unlimited disables the check. ImportService gates
	// roles with AuthorizeRole first, so Default only takes effect for
	// callers of Check that admit further roles.
	Coach   int
	Default int

	now func() time.Time
}

// NewQuotaLimiter builds a limiter with the given quotas.
func NewQuotaLimiter(db *gorm.DB, coach, def int) *QuotaLimiter {
	return &QuotaLimiter{DB: db, Coach: coach, Default: def, now: time.Now}
}

// Quota returns the monthly quota for role.
func (q *QuotaLimiter) Quota(role string) int {
	switch role {
	case domain.RoleAdmin:
		return Unlimited
	case domain.RoleCoach:
		return q.Coach
	}
	return q.Default
}

// Check returns a wrapped ErrQuotaExceeded when c has used its quota.
func (q *QuotaLimiter) Check(ctx context.Context, c Caller) error {
	quota := q.Quota(c.Role)
	if quota == Unlimited {
		return nil
	}
	used, err := repo.CountImportLogsSince(ctx, q.DB, c.UserID, monthStart(q.clock()))
	if err != nil {
		return fmt.Errorf("count import logs: %w", err)
	}
	if used >= int64(quota) {
		return fmt.Errorf("%w: %d of %d imports used this month", ErrQuotaExceeded, used, quota)
	}
	return nil
}

func (q *QuotaLimiter) clock() time.Time {
	if q.now == nil {
		return time.Now()
	}
	return q.now()
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
