package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"reportcache/internal/format"
	"reportcache/internal/query"
)

// criteriaFlags holds the request flags shared by query, stats and export.
type criteriaFlags struct {
	filters []string
	search  string
	sortBy  string
	order   string
}

func (c *criteriaFlags) bind(f *pflag.FlagSet, sorting bool) {
	f.StringArrayVarP(&c.filters, "filter", "f", nil, "filter as param=value (repeatable)")
	f.StringVarP(&c.search, "search", "s", "", "case-insensitive text search")
	if sorting {
		f.StringVar(&c.sortBy, "sort", "", "sort field (default: dataset default)")
		f.StringVar(&c.order, "order", "", "sort order: asc or desc")
	}
}

// criteria parses the filter flags. Each must be param=value; an empty value
// is kept and later ignored by the filter table.
func (c *criteriaFlags) criteria() (query.Criteria, error) {
	out := query.Criteria{
		Search: c.search,
		SortBy: c.sortBy,
		Order:  c.order,
	}
	if len(c.filters) == 0 {
		return out, nil
	}
	out.Filters = make(map[string]string, len(c.filters))
	for _, kv := range c.filters {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return out, fmt.Errorf("--filter %q: want param=value", kv)
		}
		out.Filters[k] = v
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func tableMode(markdown bool) format.Mode {
	if markdown {
		return format.Markdown
	}
	return format.ASCII
}
