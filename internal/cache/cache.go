// Package cache holds one immutable snapshot per dataset and rebuilds it from
// the source files on first access or on an explicit reload.
//
// A rebuild reads every source, normalizes the merged rows and assigns ids
// before the new snapshot is published with a single pointer store, so
// readers see either the previous snapshot or the complete new one. First
// loads of the same dataset are collapsed. A reload never joins a build that
// started before it, so it always reads the files as they are when it is
// called. Different datasets load independently.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"reportcache/internal/dataset"
	"reportcache/internal/datasource"
	"reportcache/internal/datasource/file"
	"reportcache/internal/metrics"
	"reportcache/internal/normalize"
)

var (
	// ErrUnavailable is wrapped by every failed load. A failed reload drops
	// the previous snapshot; the next Load retries the build.
	ErrUnavailable = errors.New("dataset unavailable")
	// ErrUnknownDataset is returned for ids not registered with the Store.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSourceFactory replaces the local filesystem as the origin of source
// files.
func WithSourceFactory(f datasource.Factory) Option {
	return func(s *Store) {
		if f != nil {
			s.source = f
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type entry struct {
	spec *dataset.Spec
	norm *normalize.Normalizer
	snap atomic.Pointer[dataset.Dataset]

	// building serializes rebuilds so an older build cannot publish over
	// a newer one.
	building sync.Mutex

	mu      sync.Mutex
	lastErr error
	loads   int
}

// Store is the process-wide dataset cache.
type Store struct {
	dataDir string
	entries map[string]*entry
	order   []string
	group   singleflight.Group

	source datasource.Factory
	log    *zap.Logger
	now    func() time.Time
}

// New registers specs under dataDir. Spec ids must be unique.
func New(dataDir string, specs []*dataset.Spec, opts ...Option) (*Store, error) {
	s := &Store{
		dataDir: dataDir,
		entries: make(map[string]*entry, len(specs)),
		source:  file.Factory,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	for _, spec := range specs {
		if _, dup := s.entries[spec.ID]; dup {
			return nil, fmt.Errorf("cache: duplicate dataset id %q", spec.ID)
		}
		n, err := normalize.New(spec)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		s.entries[spec.ID] = &entry{spec: spec, norm: n}
		s.order = append(s.order, spec.ID)
	}
	return s, nil
}

// IDs returns the registered dataset ids in registration order.
func (s *Store) IDs() []string { return append([]string(nil), s.order...) }

// Spec returns the spec registered under id.
func (s *Store) Spec(id string) (*dataset.Spec, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.spec, true
}

// Load returns the current snapshot of id, building it when none exists or
// when force is set. Absent source files yield an empty snapshot, not an
// error.
func (s *Store) Load(ctx context.Context, id string, force bool) (*dataset.Dataset, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
	}
	if force {
		e.building.Lock()
		defer e.building.Unlock()
		return s.rebuild(ctx, e)
	}
	if d := e.snap.Load(); d != nil {
		return d, nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		e.building.Lock()
		defer e.building.Unlock()
		if d := e.snap.Load(); d != nil {
			return d, nil
		}
		return s.rebuild(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Reload discards the snapshot of id and rebuilds it from the source files.
func (s *Store) Reload(ctx context.Context, id string) (*dataset.Dataset, error) {
	return s.Load(ctx, id, true)
}

// Peek returns the current snapshot without triggering a build.
func (s *Store) Peek(id string) (*dataset.Dataset, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	d := e.snap.Load()
	return d, d != nil
}

func (s *Store) rebuild(ctx context.Context, e *entry) (*dataset.Dataset, error) {
	start := s.now()
	d, err := s.build(ctx, e)

	e.mu.Lock()
	e.loads++
	e.lastErr = err
	e.mu.Unlock()

	if err != nil {
		e.snap.Store(nil)
		metrics.RecordSnapshot(e.spec.ID, 0)
		s.log.Error("dataset load failed",
			zap.String("dataset", e.spec.ID),
			zap.Duration("elapsed", s.now().Sub(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, e.spec.ID, err)
	}
	e.snap.Store(d)
	metrics.RecordSnapshot(e.spec.ID, d.Len())
	return d, nil
}
