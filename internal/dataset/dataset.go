package dataset

import (
	"time"

	"reportcache/pkg/records"
)

// SourceInfo describes how one source file contributed to a load.
type SourceInfo struct {
	Path     string    `json:"path"`
	Origin   string    `json:"origin,omitempty"`
	Missing  bool      `json:"missing"`
	Rows     int       `json:"rows"`
	Skipped  int       `json:"skipped"`
	Modified time.Time `json:"modified,omitempty"`
	Checksum uint64    `json:"checksum"`
}

// Dataset is one immutable snapshot of a dataset. Snapshots are built in full
// by the cache and then published; nothing mutates a published snapshot.
type Dataset struct {
	ID         string
	Generation string
	LoadedAt   time.Time

	// Fingerprint is a content hash over every source file, in source order.
	Fingerprint uint64

	Records []records.Record
	Sources []SourceInfo

	// Quality counts values tagged Unclassifiable, keyed by classifier
	// target field.
	Quality map[string]int
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// LastModified returns the newest modification time among present sources.
func (d *Dataset) LastModified() time.Time {
	var last time.Time
	for _, s := range d.Sources {
		if !s.Missing && s.Modified.After(last) {
			last = s.Modified
		}
	}
	return last
}

// MissingSources lists the paths of sources that were absent at load time.
func (d *Dataset) MissingSources() []string {
	var out []string
	for _, s := range d.Sources {
		if s.Missing {
			out = append(out, s.Path)
		}
	}
	return out
}
