package ffn

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tbourn/swim-records/internal/domain"
)

// poolMarkerRE finds the "Bassin : 25 m" captions separating pool sections.
var poolMarkerRE = regexp.MustCompile(`(?i)bassin[\s\x{a0}]*:[\s\x{a0}]*(25|50)[\s\x{a0}]*m`)

// markerWindow bounds the trailing text kept while looking for a pool
// marker split across inline tags ("Bassin : <b>50 m</b>").
const markerWindow = 64

// ParseHTML extracts every valid performance row of one swimmer's results
// page. Rows before the first pool marker use defaultPool; with defaultPool
// 0 they are skipped. Malformed rows are dropped silently. Document order is
// preserved.
func ParseHTML(iuf, doc string, defaultPool int) []domain.Performance {
	var out []domain.Performance
	walkRows(doc, defaultPool, func(pool int, cells []string) {
		if p, ok := parseRow(iuf, pool, cells); ok {
			out = append(out, p)
		}
	})
	return out
}

// ParseHTMLBests reduces ParseHTML to one row per (event, pool length): the
// strictly fastest, the earliest row winning ties. Groups keep the order in
// which they first appear.
func ParseHTMLBests(iuf, doc string, defaultPool int) []domain.Performance {
	type key struct {
		event string
		pool  int
	}
	idx := make(map[key]int)
	var out []domain.Performance
	for _, p := range ParseHTML(iuf, doc, defaultPool) {
		k := key{p.EventCode, p.PoolLength}
		i, seen := idx[k]
		if !seen {
			idx[k] = len(out)
			out = append(out, p)
			continue
		}
		if p.TimeSeconds < out[i].TimeSeconds {
			out[i] = p
		}
	}
	return out
}

// walkRows tokenizes doc and calls fn for every <tr> with its cell texts and
// the pool length of the section it belongs to.
func walkRows(doc string, defaultPool int, fn func(pool int, cells []string)) {
	z := html.NewTokenizer(strings.NewReader(doc))

	pool := defaultPool
	var (
		inRow    bool
		cellOpen bool
		skipText int // depth inside <script>/<style>
		cells    []string
		cell     strings.Builder
		tail     string // recent text, for marker detection
	)

	closeCell := func() {
		if cellOpen {
			cells = append(cells, collapseSpace(cell.String()))
			cell.Reset()
			cellOpen = false
		}
	}
	closeRow := func() {
		closeCell()
		if inRow && pool != 0 {
			fn(pool, cells)
		}
		inRow = false
		cells = nil
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input: flush what we have.
			closeRow()
			return

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if tok.Type == html.StartTagToken {
					skipText++
				}
			case atom.Tr:
				closeRow()
				inRow = true
			case atom.Td, atom.Th:
				if inRow {
					closeCell()
					cellOpen = true
				}
			case atom.Br:
				if cellOpen {
					cell.WriteByte(' ')
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if skipText > 0 {
					skipText--
				}
			case atom.Td, atom.Th:
				closeCell()
			case atom.Tr, atom.Table:
				closeRow()
			}

		case html.TextToken:
			if skipText > 0 {
				continue
			}
			text := string(z.Text())
			if cellOpen {
				cell.WriteString(text)
				cell.WriteByte(' ')
			}
			tail = lastRunes(tail+" "+text, markerWindow)
			if m := poolMarkerRE.FindAllStringSubmatch(tail, -1); m != nil {
				pool, _ = strconv.Atoi(m[len(m)-1][1])
				tail = ""
			}
		}
	}
}

// parseRow turns one row's cells into a Performance. A row qualifies when it
// has at least two cells, the first is not a column caption and the second
// is a swim time.
func parseRow(iuf string, pool int, cells []string) (domain.Performance, bool) {
	if len(cells) < 2 || cells[0] == "" || isHeaderLabel(cells[0]) {
		return domain.Performance{}, false
	}
	secs, ok := ParseTime(cells[1])
	if !ok {
		return domain.Performance{}, false
	}

	p := domain.Performance{
		SwimmerIUF:  iuf,
		EventCode:   cells[0],
		PoolLength:  pool,
		TimeSeconds: secs,
		TimeDisplay: FormatTimeDisplay(secs),
		Source:      domain.SourceFFN,
	}

	var textual []string
	for _, c := range cells[2:] {
		if c == "" {
			continue
		}
		if d, ok := ParseDate(c); ok {
			if p.CompetitionDate == "" {
				p.CompetitionDate = d
			}
			continue
		}
		if n, ok := ParsePoints(c); ok {
			if p.FFNPoints == nil {
				p.FFNPoints = &n
			}
			continue
		}
		if age, ok := ParseAgeAnnotation(c); ok {
			if p.AgeAtCompetition == nil {
				p.AgeAtCompetition = &age
			}
			continue
		}
		if isPureNumber(c) || utf8.RuneCountInString(c) <= 3 {
			continue
		}
		if _, isTime := ParseTime(c); isTime {
			continue
		}
		textual = append(textual, c)
	}
	if len(textual) > 0 {
		name := textual[0]
		p.CompetitionName = &name
	}
	if len(textual) > 1 {
		loc := textual[1]
		p.CompetitionLocation = &loc
	}
	return p, true
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}
