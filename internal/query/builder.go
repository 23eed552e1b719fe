package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Named relative date windows accepted by DateWindow.
const (
	WindowToday     = "today"
	WindowThisWeek  = "thisWeek"
	WindowNext7Days = "next7days"
	WindowThisMonth = "thisMonth"
	WindowNextMonth = "nextMonth"
)

// Builder accumulates clauses from optional request inputs. Absent or malformed inputs are skipped.
type Builder struct {
	clauses []Clause
	sort    []SortKey
	window  Window
	dated   map[string]bool
}

// NewBuilder returns an empty builder with a first-page window of 10.
func NewBuilder() *Builder {
	return &Builder{window: NewWindow(1, 10), dated: map[string]bool{}}
}

// Search adds a case-insensitive substring match over fields, OR-ed together.
func (b *Builder) Search(term string, fields ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return b
	}
	b.clauses = append(b.clauses, Clause{Op: OpSearch, Fields: fields, Term: term})
	return b
}

// In matches field against any of values. Empty values are ignored.
func (b *Builder) In(field string, values ...string) *Builder {
	vals := nonEmpty(values)
	switch len(vals) {
	case 0:
		return b
	case 1:
		b.clauses = append(b.clauses, Clause{Op: OpEqual, Field: field, Value: vals[0]})
	default:
		b.clauses = append(b.clauses, Clause{Op: OpIn, Field: field, Values: toAny(vals)})
	}
	return b
}

// Equal matches field against a single value.
func (b *Builder) Equal(field string, value any) *Builder {
	b.clauses = append(b.clauses, Clause{Op: OpEqual, Field: field, Value: value})
	return b
}

// NotEqual excludes records whose field equals value.
func (b *Builder) NotEqual(field string, value any) *Builder {
	b.clauses = append(b.clauses, Clause{Op: OpNotEqual, Field: field, Value: value})
	return b
}

// Bool adds an equality clause when raw parses as a boolean.
func (b *Builder) Bool(field, raw string) *Builder {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return b
	}
	return b.Equal(field, v)
}

// ContainsAny matches array-valued fields sharing at least one element with values.
func (b *Builder) ContainsAny(field string, values ...string) *Builder {
	vals := nonEmpty(values)
	if len(vals) == 0 {
		return b
	}
	b.clauses = append(b.clauses, Clause{Op: OpContainsAny, Field: field, Values: toAny(vals)})
	return b
}

// AtMost adds field <= raw when raw is a non-negative number.
func (b *Builder) AtMost(field, raw string) *Builder {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return b
	}
	b.clauses = append(b.clauses, Clause{Op: OpAtMost, Field: field, Value: v})
	return b
}

// DateBetween adds an explicit date range. A date-only "to" includes that whole day.
func (b *Builder) DateBetween(field, from, to string) *Builder {
	start, okFrom := parseDate(from, false)
	end, okTo := parseDate(to, true)
	if !okFrom && !okTo {
		return b
	}
	c := Clause{Op: OpDateRange, Field: field}
	if okFrom {
		c.From = &start
	}
	if okTo {
		c.Until = &end
	}
	b.clauses = append(b.clauses, c)
	b.dated[field] = true
	return b
}

// DateWindow adds a named relative window computed from now. Unknown names are ignored.
func (b *Builder) DateWindow(field, name string, now time.Time) *Builder {
	start, end, ok := RelativeWindow(name, now)
	if !ok {
		return b
	}
	b.clauses = append(b.clauses, Clause{Op: OpDateRange, Field: field, From: &start, Until: &end})
	b.dated[field] = true
	return b
}

// OnOrAfter adds an open-ended lower date bound.
func (b *Builder) OnOrAfter(field string, t time.Time) *Builder {
	b.clauses = append(b.clauses, Clause{Op: OpDateRange, Field: field, From: &t})
	b.dated[field] = true
	return b
}

// HasDateFilter reports whether any date clause was added for field.
func (b *Builder) HasDateFilter(field string) bool {
	return b.dated[field]
}

// SortBy sets the sort order.
func (b *Builder) SortBy(keys ...SortKey) *Builder {
	b.sort = keys
	return b
}

// Page sets the window from raw page/limit inputs. Missing or invalid values use defaults and
// limit is capped at maxLimit when maxLimit > 0.
func (b *Builder) Page(rawPage, rawLimit string, defaultLimit, maxLimit int) *Builder {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	b.window = NewWindow(page, limit)
	return b
}

// Build returns the accumulated filter.
func (b *Builder) Build() Filter {
	clauses := make([]Clause, len(b.clauses))
	copy(clauses, b.clauses)
	return Filter{Clauses: clauses, Window: b.window, Sort: b.sort}
}

// RelativeWindow returns the half-open [start, end) range for a named window.
func RelativeWindow(name string, now time.Time) (time.Time, time.Time, bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch name {
	case WindowToday:
		return day, day.AddDate(0, 0, 1), true
	case WindowThisWeek:
		offset := (int(day.Weekday()) + 6) % 7 // weeks start on Monday
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case WindowNext7Days:
		return day, day.AddDate(0, 0, 7), true
	case WindowThisMonth:
		return month, month.AddDate(0, 1, 0), true
	case WindowNextMonth:
		return month.AddDate(0, 1, 0), month.AddDate(0, 2, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// Values reads a possibly repeated, possibly comma-separated query parameter.
func Values(params url.Values, key string) []string {
	var out []string
	for _, raw := range params[key] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseDate(raw string, endOfRange bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		if endOfRange {
			return t.Add(time.Second), true
		}
		return t, true
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfRange {
			return t.AddDate(0, 0, 1), true
		}
		return t, true
	}
	return time.Time{}, false
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
