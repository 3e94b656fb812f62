// Package domain defines the persistence models for swimmers, scraped
// performances, personal bests, club records and the import audit log.
// These types are mapped with GORM and form the core data layer of the
// records engine.
package domain

import "time"

// Pool lengths the federation publishes results for.
const (
	Pool25 = 25
	Pool50 = 50
)

// PoolLengths lists every pool length fetched per swimmer, in fetch order.
var PoolLengths = []int{Pool25, Pool50}

// Sexes accepted by the aggregation engine.
const (
	SexMale   = "M"
	SexFemale = "F"
)

// Application roles resolved by the identity layer.
const (
	RoleAdmin = "admin"
	RoleCoach = "coach"
)

// SourceFFN tags performances scraped from the federation results site.
const SourceFFN = "ffn"

// Run modes accepted by the import trigger.
const (
	ModeFull        = "full"
	ModeRecalculate = "recalculate"
)

// ImportStatus is the lifecycle state of an ImportLog row.
type ImportStatus string

const (
	StatusPending ImportStatus = "pending"
	StatusRunning ImportStatus = "running"
	StatusSuccess ImportStatus = "success"
	StatusError   ImportStatus = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s ImportStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// Swimmer is a tracked club member. Rows are managed by the coaching tools;
// the engine only reads them and stamps LastImportedAt.
//
// Fields:
//   - IUF: federation identifier; empty when the swimmer has no external identity.
//   - Sex: "M" or "F"; anything else keeps the swimmer out of rankings.
//   - Birthdate: optional, used to derive competition age.
//   - Active: inactive swimmers are ignored by both run modes.
type Swimmer struct {
	ID             string     `json:"id"               gorm:"type:char(36);primaryKey"`
	IUF            string     `json:"iuf"              gorm:"type:varchar(32);not null;index:idx_swimmers_iuf"`
	Name           string     `json:"name"             gorm:"type:varchar(255);not null"`
	Sex            string     `json:"sex"              gorm:"type:varchar(1);not null"`
	Birthdate      *time.Time `json:"birthdate,omitempty"`
	Active         bool       `json:"active"           gorm:"not null;index:idx_swimmers_active"`
	LastImportedAt *time.Time `json:"last_imported_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Swimmer.
func (Swimmer) TableName() string { return "swimmers" }

// Performance is one scraped result row. The unique index ux_performance_dedup
// is the dedup key: re-importing the same result is a no-op.
//
// CompetitionDate is an ISO date (YYYY-MM-DD) or "" when the source row had
// none, so that the dedup key never contains NULL.
type Performance struct {
	ID                  string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	SwimmerIUF          string    `json:"swimmer_iuf"            gorm:"type:varchar(32);not null;uniqueIndex:ux_performance_dedup,priority:1"`
	EventCode           string    `json:"event_code"             gorm:"type:varchar(64);not null;uniqueIndex:ux_performance_dedup,priority:2"`
	PoolLength          int       `json:"pool_length"            gorm:"not null;check:pool_length IN (25,50);uniqueIndex:ux_performance_dedup,priority:3"`
	CompetitionDate     string    `json:"competition_date"       gorm:"type:varchar(10);not null;uniqueIndex:ux_performance_dedup,priority:4"`
	TimeSeconds         float64   `json:"time_seconds"           gorm:"not null;uniqueIndex:ux_performance_dedup,priority:5"`
	TimeDisplay         string    `json:"time_display"           gorm:"type:varchar(16);not null"`
	CompetitionName     *string   `json:"competition_name,omitempty"     gorm:"type:varchar(255)"`
	CompetitionLocation *string   `json:"competition_location,omitempty" gorm:"type:varchar(255)"`
	FFNPoints           *int      `json:"ffn_points,omitempty"`
	AgeAtCompetition    *int      `json:"age_at_competition,omitempty"`
	Source              string    `json:"source"                 gorm:"type:varchar(16);not null"`
	CreatedAt           time.Time `json:"created_at"`
}

// TableName returns the database table name for Performance.
func (Performance) TableName() string { return "performances" }

// ClubPerformanceBest is a swimmer's fastest time within one category.
// The table is a full snapshot rewritten by every recompute.
type ClubPerformanceBest struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	SwimmerIUF      string    `json:"swimmer_iuf"      gorm:"type:varchar(32);not null;uniqueIndex:ux_best_swimmer_category,priority:1"`
	SwimmerName     string    `json:"swimmer_name"     gorm:"type:varchar(255);not null"`
	EventCode       string    `json:"event_code"       gorm:"type:varchar(64);not null;uniqueIndex:ux_best_swimmer_category,priority:2"`
	PoolLength      int       `json:"pool_length"      gorm:"not null;uniqueIndex:ux_best_swimmer_category,priority:3"`
	Sex             string    `json:"sex"              gorm:"type:varchar(1);not null;uniqueIndex:ux_best_swimmer_category,priority:4"`
	AgeBracket      int       `json:"age_bracket"      gorm:"not null;check:age_bracket BETWEEN 8 AND 17;uniqueIndex:ux_best_swimmer_category,priority:5"`
	TimeSeconds     float64   `json:"time_seconds"     gorm:"not null"`
	TimeDisplay     string    `json:"time_display"     gorm:"type:varchar(16);not null"`
	CompetitionDate string    `json:"competition_date" gorm:"type:varchar(10);not null"`
	CompetitionName *string   `json:"competition_name,omitempty" gorm:"type:varchar(255)"`
	PerformanceID   string    `json:"performance_id"   gorm:"type:char(36);not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for ClubPerformanceBest.
func (ClubPerformanceBest) TableName() string { return "club_performance_bests" }

// ClubRecord is the fastest time across all swimmers for one category.
// Rows are upserted on (pool_length, sex, age_bracket, event_code) and are
// never deleted: a category that loses every qualifying performance keeps
// its last known record.
type ClubRecord struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	PoolLength      int       `json:"pool_length"      gorm:"not null;uniqueIndex:ux_club_record_category,priority:1"`
	Sex             string    `json:"sex"              gorm:"type:varchar(1);not null;uniqueIndex:ux_club_record_category,priority:2"`
	AgeBracket      int       `json:"age_bracket"      gorm:"not null;uniqueIndex:ux_club_record_category,priority:3"`
	EventCode       string    `json:"event_code"       gorm:"type:varchar(64);not null;uniqueIndex:ux_club_record_category,priority:4"`
	TimeSeconds     float64   `json:"time_seconds"     gorm:"not null"`
	TimeDisplay     string    `json:"time_display"     gorm:"type:varchar(16);not null"`
	SwimmerIUF      string    `json:"swimmer_iuf"      gorm:"type:varchar(32);not null"`
	SwimmerName     string    `json:"swimmer_name"     gorm:"type:varchar(255);not null"`
	CompetitionDate string    `json:"competition_date" gorm:"type:varchar(10);not null"`
	CompetitionName *string   `json:"competition_name,omitempty" gorm:"type:varchar(255)"`
	BestID          string    `json:"best_id"          gorm:"type:char(36);not null"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for ClubRecord.
func (ClubRecord) TableName() string { return "club_records" }

// ImportLog records one swimmer's fetch/ingest step within a full run.
// Status moves pending → running → success|error and is frozen afterwards.
type ImportLog struct {
	ID                   string       `json:"id"                    gorm:"type:char(36);primaryKey"`
	TriggeredBy          string       `json:"triggered_by"          gorm:"type:varchar(64);not null;index:idx_import_logs_user_created,priority:1"`
	SwimmerIUF           string       `json:"swimmer_iuf"           gorm:"type:varchar(32);not null"`
	SwimmerName          string       `json:"swimmer_name"          gorm:"type:varchar(255);not null"`
	Status               ImportStatus `json:"status"                gorm:"type:varchar(16);not null;check:status IN ('pending','running','success','error')"`
	PerformancesFound    int          `json:"performances_found"    gorm:"not null"`
	PerformancesImported int          `json:"performances_imported" gorm:"not null"`
	ErrorMessage         *string      `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt            *time.Time   `json:"started_at,omitempty"`
	FinishedAt           *time.Time   `json:"finished_at,omitempty"`
	CreatedAt            time.Time    `json:"created_at"            gorm:"index:idx_import_logs_user_created,priority:2"`
}

// TableName returns the database table name for ImportLog.
func (ImportLog) TableName() string { return "import_logs" }

// EventCode maps a folded federation event label (e.g. "50 NL") to the
// normalized code used for ranking (e.g. "50_FREE").
type EventCode struct {
	Label    string `json:"label"    gorm:"type:varchar(64);primaryKey"`
	Code     string `json:"code"     gorm:"type:varchar(32);not null;index"`
	Stroke   string `json:"stroke"   gorm:"type:varchar(16);not null"`
	Distance int    `json:"distance" gorm:"not null"`
}

// TableName returns the database table name for EventCode.
func (EventCode) TableName() string { return "event_codes" }
