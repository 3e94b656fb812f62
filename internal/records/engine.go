// Package records computes personal bests and club records from the stored
// performances and the swimmer roster. Compute is a pure function: it keeps
// no state between runs and its output depends only on its inputs, never on
// the order they arrive in.
//
// Two phases:
//  1. per (swimmer, category) keep the fastest performance;
//  2. per category keep the fastest phase-1 entry across swimmers.
//
// Equal times are broken by earlier competition date (unknown dates last),
// then smaller swimmer IUF, then smaller performance ID.
package records

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/ffn"
)

// Age bracket bounds, inclusive.
const (
	MinAgeBracket = 8
	MaxAgeBracket = 17
)

var (
	bestNamespace   = uuid.NewSHA1(uuid.NameSpaceOID, []byte("swim-records/club-performance-best"))
	recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("swim-records/club-record"))
)

// EventNormalizer maps raw event labels to normalized event codes.
type EventNormalizer interface {
	Normalize(label string) string
}

// Category groups comparable performances.
type Category struct {
	EventCode  string
	PoolLength int
	Sex        string
	AgeBracket int
}

// Key is the stable textual form of c.
func (c Category) Key() string {
	return fmt.Sprintf("%s|%d|%s|%d", c.EventCode, c.PoolLength, c.Sex, c.AgeBracket)
}

func (c Category) less(o Category) bool {
	if c.PoolLength != o.PoolLength {
		return c.PoolLength < o.PoolLength
	}
	if c.Sex != o.Sex {
		return c.Sex < o.Sex
	}
	if c.AgeBracket != o.AgeBracket {
		return c.AgeBracket < o.AgeBracket
	}
	return c.EventCode < o.EventCode
}

// Snapshot is the full output of one recompute.
type Snapshot struct {
	Bests   []domain.ClubPerformanceBest
	Records []domain.ClubRecord
	// Swimmers counts roster entries eligible for ranking.
	Swimmers int
}

// ClampAge maps an age onto the [MinAgeBracket, MaxAgeBracket] range.
func ClampAge(age int) int {
	if age < MinAgeBracket {
		return MinAgeBracket
	}
	if age > MaxAgeBracket {
		return MaxAgeBracket
	}
	return age
}

// AgeAt returns the age in whole years of someone born at birth on date on.
func AgeAt(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

// ResolveAge derives the competition age of p: the explicit "(NN ans)"
// annotation first, else birthdate against competition date. ok is false
// when neither source is usable.
func ResolveAge(p domain.Performance, s domain.Swimmer) (int, bool) {
	if p.AgeAtCompetition != nil {
		return *p.AgeAtCompetition, true
	}
	if s.Birthdate == nil || p.CompetitionDate == "" {
		return 0, false
	}
	on, err := time.Parse(time.DateOnly, p.CompetitionDate)
	if err != nil {
		return 0, false
	}
	age := AgeAt(*s.Birthdate, on)
	if age < 0 {
		return 0, false
	}
	return age, true
}

// NormalizeSex accepts M/F in any case plus the French "H" (homme).
func NormalizeSex(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "H":
		return domain.SexMale, true
	case "F":
		return domain.SexFemale, true
	}
	return "", false
}

type candidate struct {
	cat     Category
	perf    domain.Performance
	swimmer domain.Swimmer
}

// beats reports whether a ranks strictly ahead of b.
func (a candidate) beats(b candidate) bool {
	if a.perf.TimeSeconds != b.perf.TimeSeconds {
		return a.perf.TimeSeconds < b.perf.TimeSeconds
	}
	if ad, bd := a.perf.CompetitionDate, b.perf.CompetitionDate; ad != bd {
		switch {
		case ad == "":
			return false
		case bd == "":
			return true
		default:
			return ad < bd
		}
	}
	if a.swimmer.IUF != b.swimmer.IUF {
		return a.swimmer.IUF < b.swimmer.IUF
	}
	return a.perf.ID < b.perf.ID
}

// Compute runs both aggregation phases over the full performance table.
func Compute(perfs []domain.Performance, swimmers []domain.Swimmer, events EventNormalizer) Snapshot {
	if events == nil {
		events = (*EventTable)(nil)
	}
	roster := eligibleRoster(swimmers)

	// Phase 1: per-swimmer bests.
	type bestKey struct {
		iuf string
		cat string
	}
	bests := make(map[bestKey]candidate)
	for _, p := range perfs {
		s, ok := roster[p.SwimmerIUF]
		if !ok {
			continue
		}
		age, ok := ResolveAge(p, s)
		if !ok {
			continue
		}
		c := candidate{
			cat: Category{
				EventCode:  events.Normalize(p.EventCode),
				PoolLength: p.PoolLength,
				Sex:        s.Sex,
				AgeBracket: ClampAge(age),
			},
			perf:    p,
			swimmer: s,
		}
		k := bestKey{s.IUF, c.cat.Key()}
		if cur, seen := bests[k]; !seen || c.beats(cur) {
			bests[k] = c
		}
	}

	ordered := make([]candidate, 0, len(bests))
	for _, c := range bests {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].cat != ordered[j].cat {
			return ordered[i].cat.less(ordered[j].cat)
		}
		return ordered[i].swimmer.IUF < ordered[j].swimmer.IUF
	})

	// Phase 2: club-wide bests.
	top := make(map[Category]candidate)
	var cats []Category
	for _, c := range ordered {
		cur, seen := top[c.cat]
		if !seen {
			cats = append(cats, c.cat)
		}
		if !seen || c.beats(cur) {
			top[c.cat] = c
		}
	}

	snap := Snapshot{
		Bests:    make([]domain.ClubPerformanceBest, 0, len(ordered)),
		Records:  make([]domain.ClubRecord, 0, len(cats)),
		Swimmers: len(roster),
	}
	for _, c := range ordered {
		snap.Bests = append(snap.Bests, toBest(c))
	}
	for _, cat := range cats {
		c := top[cat]
		snap.Records = append(snap.Records, domain.ClubRecord{
			ID:              uuid.NewSHA1(recordNamespace, []byte(cat.Key())).String(),
			PoolLength:      cat.PoolLength,
			Sex:             cat.Sex,
			AgeBracket:      cat.AgeBracket,
			EventCode:       cat.EventCode,
			TimeSeconds:     c.perf.TimeSeconds,
			TimeDisplay:     ffn.FormatTimeDisplay(c.perf.TimeSeconds),
			SwimmerIUF:      c.swimmer.IUF,
			SwimmerName:     c.swimmer.Name,
			CompetitionDate: c.perf.CompetitionDate,
			CompetitionName: c.perf.CompetitionName,
			BestID:          bestID(c),
		})
	}
	return snap
}

// eligibleRoster indexes active swimmers with an IUF and a usable sex.
// Duplicate IUFs resolve to the smallest swimmer ID.
func eligibleRoster(swimmers []domain.Swimmer) map[string]domain.Swimmer {
	roster := make(map[string]domain.Swimmer, len(swimmers))
	for _, s := range swimmers {
		iuf := strings.TrimSpace(s.IUF)
		if !s.Active || iuf == "" {
			continue
		}
		sex, ok := NormalizeSex(s.Sex)
		if !ok {
			continue
		}
		s.IUF, s.Sex = iuf, sex
		if cur, dup := roster[iuf]; dup && cur.ID <= s.ID {
			continue
		}
		roster[iuf] = s
	}
	return roster
}

func bestID(c candidate) string {
	return uuid.NewSHA1(bestNamespace, []byte(c.swimmer.IUF+"|"+c.cat.Key())).String()
}

func toBest(c candidate) domain.ClubPerformanceBest {
	return domain.ClubPerformanceBest{
		ID:              bestID(c),
		SwimmerIUF:      c.swimmer.IUF,
		SwimmerName:     c.swimmer.Name,
		EventCode:       c.cat.EventCode,
		PoolLength:      c.cat.PoolLength,
		Sex:             c.cat.Sex,
		AgeBracket:      c.cat.AgeBracket,
		TimeSeconds:     c.perf.TimeSeconds,
		TimeDisplay:     ffn.FormatTimeDisplay(c.perf.TimeSeconds),
		CompetitionDate: c.perf.CompetitionDate,
		CompetitionName: c.perf.CompetitionName,
		PerformanceID:   c.perf.ID,
	}
}
