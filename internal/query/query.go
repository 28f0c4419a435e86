package query

import (
	"reportcache/internal/dataset"
	"reportcache/pkg/records"
)

// PageResult is one page of projected records.
type PageResult struct {
	Items []records.Record `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Pages int              `json:"pages"`
}

// Select returns every record of ds matching c, sorted, without pagination.
// The returned records are the snapshot's own and must not be modified.
func Select(ds *dataset.Dataset, spec *dataset.Spec, c Criteria) []records.Record {
	if ds == nil {
		return []records.Record{}
	}
	out := Compile(spec, c).Filter(ds.Records)
	if field, desc, ok := SortField(spec, c); ok {
		Sort(out, field, desc)
	}
	return out
}

// Run filters, sorts, and paginates ds. A page past the end yields no items
// and the full total.
func Run(ds *dataset.Dataset, spec *dataset.Spec, c Criteria) PageResult {
	c = c.Normalized()
	matched := Select(ds, spec, c)

	res := PageResult{
		Items: []records.Record{},
		Total: len(matched),
		Page:  c.Page,
		Limit: c.Limit,
		Pages: Pages(len(matched), c.Limit),
	}

	start := (c.Page - 1) * c.Limit
	if start >= len(matched) {
		return res
	}
	end := min(start+c.Limit, len(matched))

	schema := spec.Schema()
	res.Items = make([]records.Record, 0, end-start)
	for _, r := range matched[start:end] {
		res.Items = append(res.Items, r.Project(schema))
	}
	return res
}
