package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Swimmer{}).TableName():             "swimmers",
		(Performance{}).TableName():         "performances",
		(ClubPerformanceBest{}).TableName(): "club_performance_bests",
		(ClubRecord{}).TableName():          "club_records",
		(ImportLog{}).TableName():           "import_logs",
		(EventCode{}).TableName():           "event_codes",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestImportStatus_Terminal(t *testing.T) {
	cases := map[ImportStatus]bool{
		StatusPending: false,
		StatusRunning: false,
		StatusSuccess: true,
		StatusError:   true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v; want %v", s, got, want)
		}
	}
}

func TestMigrations_Indexes_AndConstraints(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Swimmer{}, &Performance{}, &ClubPerformanceBest{}, &ClubRecord{}, &ImportLog{}, &EventCode{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	indexes := []struct {
		model any
		name  string
	}{
		{&Performance{}, "ux_performance_dedup"},
		{&ClubPerformanceBest{}, "ux_best_swimmer_category"},
		{&ClubRecord{}, "ux_club_record_category"},
		{&ImportLog{}, "idx_import_logs_user_created"},
		{&Swimmer{}, "idx_swimmers_iuf"},
	}
	for _, ix := range indexes {
		if !m.HasIndex(ix.model, ix.name) {
			t.Fatalf("expected index %s on %T", ix.name, ix.model)
		}
	}

	now := time.Now().UTC()
	p := Performance{
		ID: "p1", SwimmerIUF: "123", EventCode: "50 NL", PoolLength: Pool25,
		CompetitionDate: "2025-03-15", TimeSeconds: 27.45, TimeDisplay: "27.45",
		Source: SourceFFN, CreatedAt: now,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("insert performance: %v", err)
	}

	// Same dedup key, different ID: rejected by the unique index.
	dup := p
	dup.ID = "p2"
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation on dedup key")
	}

	// Pool length outside {25,50} violates the check constraint.
	bad := p
	bad.ID = "p3"
	bad.PoolLength = 33
	if err := db.Create(&bad).Error; err == nil {
		t.Fatalf("expected check constraint failure for pool_length=33")
	}

	// Unknown status violates the check constraint.
	lg := ImportLog{ID: "l1", TriggeredBy: "u1", SwimmerIUF: "123", SwimmerName: "A", Status: "bogus", CreatedAt: now}
	if err := db.Create(&lg).Error; err == nil {
		t.Fatalf("expected check constraint failure for status")
	}
}
