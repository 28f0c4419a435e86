// Package query filters, searches, sorts, and paginates dataset snapshots.
//
// Filters are conjunctive and resolved through the dataset's filter table;
// parameters the table does not name are ignored, as are values that cannot
// be parsed for a numeric or date filter. Search is a case-insensitive
// substring test over the dataset's searchable fields, and matches when any
// one of them contains the term.
package query

import (
	"math"
	"strings"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 50
	// MaxLimit caps the page size.
	MaxLimit = 1000
)

// Order values.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Criteria is one request against a dataset.
type Criteria struct {
	Filters map[string]string `json:"filters,omitempty"`
	Search  string            `json:"search,omitempty"`
	Page    int               `json:"page,omitempty"`
	Limit   int               `json:"limit,omitempty"`
	SortBy  string            `json:"sort_by,omitempty"`
	Order   string            `json:"order,omitempty"`
}

// Normalized returns c with page and limit clamped to their valid ranges.
func (c Criteria) Normalized() Criteria {
	if c.Page < 1 {
		c.Page = 1
	}
	switch {
	case c.Limit < 1:
		c.Limit = DefaultLimit
	case c.Limit > MaxLimit:
		c.Limit = MaxLimit
	}
	c.Order = strings.ToLower(strings.TrimSpace(c.Order))
	c.Search = strings.TrimSpace(c.Search)
	return c
}

// Pages returns ceil(total/limit).
func Pages(total, limit int) int {
	if limit < 1 || total < 1 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
