// Package query builds request-scoped filter and pagination descriptors for listing endpoints.
// It performs no I/O; repositories translate a Filter into store queries.
package query

import (
	"math"
	"time"
)

// Op identifies the kind of predicate a Clause expresses.
type Op int

const (
	// OpSearch matches when any of Fields contains Term, case-insensitively.
	OpSearch Op = iota + 1
	// OpIn matches when Field equals any of Values.
	OpIn
	// OpEqual matches when Field equals Value.
	OpEqual
	// OpNotEqual matches when Field differs from Value.
	OpNotEqual
	// OpContainsAny matches when the array stored in Field shares an element with Values.
	OpContainsAny
	// OpAtMost matches when Field <= Value.
	OpAtMost
	// OpDateRange matches From <= Field < Until; either bound may be nil.
	OpDateRange
)

// Clause is one predicate. Clauses in a Filter are combined with AND.
type Clause struct {
	Op     Op
	Field  string
	Fields []string
	Term   string
	Value  any
	Values []any
	From   *time.Time
	Until  *time.Time
}

// SortKey orders results by Field.
type SortKey struct {
	Field string
	Desc  bool
}

// Asc sorts ascending by field.
func Asc(field string) SortKey { return SortKey{Field: field} }

// Desc sorts descending by field.
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

// Window is a 1-indexed pagination window.
type Window struct {
	Page  int
	Limit int
	Skip  int
}

// NewWindow clamps page and limit and computes the skip offset.
func NewWindow(page, limit int) Window {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return Window{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// Filter is the combined predicate plus pagination window and sort order.
type Filter struct {
	Clauses []Clause
	Window  Window
	Sort    []SortKey
}

// Has reports whether a clause on field with op exists.
func (f Filter) Has(op Op, field string) bool {
	for _, c := range f.Clauses {
		if c.Op == op && c.Field == field {
			return true
		}
	}
	return false
}

// Pagination is the metadata reported with a listing response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// Pagination computes response metadata for total matching records.
func (f Filter) Pagination(total int64) Pagination {
	limit := f.Window.Limit
	if limit < 1 {
		limit = 1
	}
	page := f.Window.Page
	if page < 1 {
		page = 1
	}
	return Pagination{
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
		Limit: limit,
	}
}
