// Package transformer defines the batch transformation step applied to parsed
// records before they are published in a dataset snapshot.
package transformer

import "reportcache/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate the
// records in place and must return the batch to pass on.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
