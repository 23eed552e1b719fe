package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Page(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		limit    string
		expected Window
	}{
		{name: "defaults", expected: Window{Page: 1, Limit: 12, Skip: 0}},
		{name: "explicit", page: "3", limit: "5", expected: Window{Page: 3, Limit: 5, Skip: 10}},
		{name: "capped", page: "2", limit: "500", expected: Window{Page: 2, Limit: 100, Skip: 100}},
		{name: "garbage", page: "abc", limit: "-4", expected: Window{Page: 1, Limit: 12, Skip: 0}},
		{name: "zero page", page: "0", limit: "10", expected: Window{Page: 1, Limit: 10, Skip: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewBuilder().Page(tt.page, tt.limit, 12, 100).Build()
			assert.Equal(t, tt.expected, f.Window)
		})
	}
}

func TestFilter_Pagination(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int
	}{
		{total: 0, limit: 10, pages: 0},
		{total: 1, limit: 10, pages: 1},
		{total: 10, limit: 10, pages: 1},
		{total: 11, limit: 10, pages: 2},
		{total: 25, limit: 12, pages: 3},
	}
	for _, tt := range tests {
		f := Filter{Window: NewWindow(2, tt.limit)}
		p := f.Pagination(tt.total)
		assert.Equal(t, tt.pages, p.Pages, "total=%d limit=%d", tt.total, tt.limit)
		assert.Equal(t, 2, p.Page)
		assert.Equal(t, tt.limit, p.Limit)
		assert.Equal(t, tt.total, p.Total)
	}
}

func TestBuilder_SkipsMalformedInput(t *testing.T) {
	f := NewBuilder().
		Search("   ", "name").
		In("specialty", "", " ").
		Bool("featured", "maybe").
		AtMost("fee", "-1").
		AtMost("fee", "cheap").
		ContainsAny("tags").
		DateBetween("date", "yesterday", "soon").
		DateWindow("date", "fortnight", time.Now()).
		Build()

	assert.Empty(t, f.Clauses)
}

func TestBuilder_Clauses(t *testing.T) {
	b := NewBuilder().
		Search(" yoga ", "name", "bio").
		In("specialty", "Yoga").
		In("type", "class", "workshop").
		Bool("featured", "true").
		AtMost("fee", "80.5")
	f := b.Build()
	require.Len(t, f.Clauses, 5)

	assert.Equal(t, Clause{Op: OpSearch, Fields: []string{"name", "bio"}, Term: "yoga"}, f.Clauses[0])
	assert.Equal(t, Clause{Op: OpEqual, Field: "specialty", Value: "Yoga"}, f.Clauses[1])
	assert.Equal(t, Clause{Op: OpIn, Field: "type", Values: []any{"class", "workshop"}}, f.Clauses[2])
	assert.Equal(t, Clause{Op: OpEqual, Field: "featured", Value: true}, f.Clauses[3])
	assert.Equal(t, Clause{Op: OpAtMost, Field: "fee", Value: 80.5}, f.Clauses[4])
	assert.False(t, b.HasDateFilter("date"))
}

func TestBuilder_DateBetween(t *testing.T) {
	b := NewBuilder().DateBetween("date", "", "2026-03-10")
	f := b.Build()
	require.Len(t, f.Clauses, 1)
	assert.Nil(t, f.Clauses[0].From)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *f.Clauses[0].Until)
	assert.True(t, b.HasDateFilter("date"))
}

func TestRelativeWindow(t *testing.T) {
	// Saturday
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{name: WindowToday, start: day(10, 17), end: day(10, 18)},
		{name: WindowThisWeek, start: day(10, 12), end: day(10, 19)},
		{name: WindowNext7Days, start: day(10, 17), end: day(10, 24)},
		{name: WindowThisMonth, start: day(10, 1), end: day(11, 1)},
		{name: WindowNextMonth, start: day(11, 1), end: day(12, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := RelativeWindow(tt.name, now)
			require.True(t, ok)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	_, _, ok := RelativeWindow("someday", now)
	assert.False(t, ok)
}

func TestValues(t *testing.T) {
	params := url.Values{"tag": {"a, b", "c", " ,"}}
	assert.Equal(t, []string{"a", "b", "c"}, Values(params, "tag"))
	assert.Nil(t, Values(params, "missing"))
}

func TestSecondPageOfTwentyFive(t *testing.T) {
	f := NewBuilder().Page("2", "10", 12, 100).Build()
	assert.Equal(t, 10, f.Window.Skip)
	p := f.Pagination(25)
	assert.Equal(t, Pagination{Total: 25, Page: 2, Pages: 3, Limit: 10}, p)
}
