package records

import (
	"strconv"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/ffn"
)

// EventTable resolves raw federation labels to normalized event codes.
// Unknown labels fall back to their folded form, so one unmapped event
// still groups consistently across spellings that only differ in case,
// accents or spacing.
type EventTable struct {
	codes map[string]string
}

// NewEventTable indexes rows by folded label.
func NewEventTable(rows []domain.EventCode) *EventTable {
	t := &EventTable{codes: make(map[string]string, len(rows))}
	for _, r := range rows {
		t.codes[ffn.FoldLabel(r.Label)] = r.Code
	}
	return t
}

// Normalize returns the event code for a raw label.
func (t *EventTable) Normalize(label string) string {
	folded := ffn.FoldLabel(label)
	if t != nil {
		if code, ok := t.codes[folded]; ok {
			return code
		}
	}
	return folded
}

// DefaultEventCodes is the individual event catalogue seeded at startup:
// short and long spellings the results site uses for each event.
func DefaultEventCodes() []domain.EventCode {
	type stroke struct {
		code      string
		name      string
		labels    []string
		distances []int
	}
	strokes := []stroke{
		{"FREE", "freestyle", []string{"NL", "Nage Libre"}, []int{50, 100, 200, 400, 800, 1500}},
		{"BACK", "backstroke", []string{"Dos"}, []int{50, 100, 200}},
		{"BREAST", "breaststroke", []string{"Brasse"}, []int{50, 100, 200}},
		{"FLY", "butterfly", []string{"Pap", "Papillon"}, []int{50, 100, 200}},
		{"IM", "medley", []string{"4N", "4 Nages"}, []int{100, 200, 400}},
	}

	var out []domain.EventCode
	for _, s := range strokes {
		for _, d := range s.distances {
			code := strconv.Itoa(d) + "_" + s.code
			for _, l := range s.labels {
				out = append(out, domain.EventCode{
					Label:    ffn.FoldLabel(strconv.Itoa(d) + " " + l),
					Code:     code,
					Stroke:   s.name,
					Distance: d,
				})
			}
		}
	}
	return out
}
