// Package engine answers list, statistics, export, and summary requests over
// the datasets held by a cache.Store.
//
// An Engine is stateless between calls apart from the compiled aggregation
// plans: every Stats call recomputes its bundle from the current snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"reportcache/internal/cache"
	"reportcache/internal/dataset"
	"reportcache/internal/export"
	"reportcache/internal/insight"
	"reportcache/internal/match"
	"reportcache/internal/metrics"
	"reportcache/internal/query"
	"reportcache/internal/stats"
)

var (
	// ErrUnknownDataset is returned for ids the catalog does not define.
	ErrUnknownDataset = cache.ErrUnknownDataset
	// ErrUnknownField is returned by Values for fields outside the schema.
	ErrUnknownField = errors.New("unknown field")
)

const defaultSlowStep = 250 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithThresholds overrides insight thresholds per dataset. Keys missing from
// the override keep the catalog value.
func WithThresholds(t map[string]map[string]float64) Option {
	return func(e *Engine) { e.overrides = t }
}

// WithWindows overrides the evolution window per dataset.
func WithWindows(w map[string]int) Option {
	return func(e *Engine) { e.windows = w }
}

// WithSlowStep sets the duration above which a step is logged.
func WithSlowStep(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.slow = d
		}
	}
}

type compiled struct {
	spec       *dataset.Spec
	plan       *stats.Plan
	thresholds map[string]float64
	externals  map[string]*match.Matcher
}

// Engine serves requests for every dataset registered with its store.
type Engine struct {
	store *cache.Store
	log   *zap.Logger
	slow  time.Duration

	overrides map[string]map[string]float64
	windows   map[string]int
	compiled  map[string]*compiled
}

// New compiles the aggregation plan of every dataset in store.
func New(store *cache.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:    store,
		log:      zap.NewNop(),
		slow:     defaultSlowStep,
		compiled: make(map[string]*compiled),
	}
	for _, o := range opts {
		o(e)
	}

	for _, id := range store.IDs() {
		spec, _ := store.Spec(id)
		report := spec.Report
		if w, ok := e.windows[id]; ok && w > 0 && report.Evolution != nil {
			ev := *report.Evolution
			ev.Window = w
			report.Evolution = &ev
		}
		plan, err := stats.Compile(report)
		if err != nil {
			return nil, fmt.Errorf("engine: dataset %s: %w", id, err)
		}

		c := &compiled{
			spec:       spec,
			plan:       plan,
			thresholds: maps.Clone(spec.Thresholds),
			externals:  make(map[string]*match.Matcher),
		}
		if c.thresholds == nil {
			c.thresholds = make(map[string]float64)
		}
		maps.Copy(c.thresholds, e.overrides[id])

		for _, ext := range report.Externals {
			if _, ok := store.Spec(ext.Dataset); !ok {
				return nil, fmt.Errorf("engine: dataset %s: external %s: %w: %s", id, ext.Name, ErrUnknownDataset, ext.Dataset)
			}
			if ext.When == nil {
				continue
			}
			m, err := match.Compile(*ext.When)
			if err != nil {
				return nil, fmt.Errorf("engine: dataset %s: external %s: %w", id, ext.Name, err)
			}
			c.externals[ext.Name] = m
		}
		e.compiled[id] = c
	}
	return e, nil
}

// Info describes one dataset of the catalog.
type Info struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Sources []string `json:"sources"`
	Fields  []string `json:"fields"`
	Filters []string `json:"filters"`
	Search  []string `json:"search"`
}

// Datasets lists the catalog in registration order.
func (e *Engine) Datasets() []Info {
	ids := e.store.IDs()
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		spec := e.compiled[id].spec
		files := make([]string, len(spec.Sources))
		for i, s := range spec.Sources {
			files[i] = s.File
		}
		out = append(out, Info{
			ID:      id,
			Title:   spec.Title,
			Sources: files,
			Fields:  spec.Schema(),
			Filters: spec.FilterParams(),
			Search:  append([]string(nil), spec.Search...),
		})
	}
	return out
}

func (e *Engine) lookup(id string) (*compiled, error) {
	c, ok := e.compiled[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
	}
	return c, nil
}

// observe records a finished step and logs it when it failed or ran slow.
func (e *Engine) observe(id, step string, start time.Time, err error) {
	d := time.Since(start)
	metrics.RecordStep(id, step, err, d)
	switch {
	case err != nil:
		e.log.Debug("step failed",
			zap.String("dataset", id),
			zap.String("step", step),
			zap.Duration("elapsed", d),
			zap.Error(err),
		)
	case d > e.slow:
		e.log.Debug("slow step",
			zap.String("dataset", id),
			zap.String("step", step),
			zap.Duration("elapsed", d),
		)
	}
}

// Query returns one page of the records of id matching c.
func (e *Engine) Query(ctx context.Context, id string, c query.Criteria) (res query.PageResult, err error) {
	start := time.Now()
	defer func() { e.observe(id, "query", start, err) }()

	cd, err := e.lookup(id)
	if err != nil {
		return query.PageResult{}, err
	}
	ds, err := e.store.Load(ctx, id, false)
	if err != nil {
		return query.PageResult{}, err
	}
	return query.Run(ds, cd.spec, c), nil
}

// Report is a statistics bundle with the insights generated from it.
type Report struct {
	stats.Bundle
	Insights []insight.Insight `json:"insights"`
}

// Stats aggregates the records of id matching c and evaluates its insight
// rules. Pagination and sort fields of c are ignored.
func (e *Engine) Stats(ctx context.Context, id string, c query.Criteria) (rep Report, err error) {
	start := time.Now()
	defer func() { e.observe(id, "stats", start, err) }()

	cd, err := e.lookup(id)
	if err != nil {
		return Report{}, err
	}
	ds, err := e.store.Load(ctx, id, false)
	if err != nil {
		return Report{}, err
	}

	plan := query.Compile(cd.spec, c)
	recs := plan.Filter(ds.Records)
	env := stats.Env{
		Dataset:   id,
		Externals: e.externals(ctx, id, cd),
		Quality:   ds.Quality,
		Filters:   plan.Applied(),
	}
	b := stats.Compute(recs, cd.plan, env)
	return Report{
		Bundle:   b,
		Insights: insight.Generate(b, cd.spec.Insights, cd.thresholds),
	}, nil
}

// externals counts the population of every external of id. A population
// that cannot be loaded counts as zero.
func (e *Engine) externals(ctx context.Context, id string, cd *compiled) map[string]int {
	exts := cd.spec.Report.Externals
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string]int, len(exts))
	for _, ext := range exts {
		ds, err := e.store.Load(ctx, ext.Dataset, false)
		if err != nil {
			e.log.Warn("external population unavailable",
				zap.String("dataset", id),
				zap.String("external", ext.Name),
				zap.String("source", ext.Dataset),
				zap.Error(err),
			)
			out[ext.Name] = 0
			continue
		}
		m, ok := cd.externals[ext.Name]
		if !ok {
			out[ext.Name] = ds.Len()
			continue
		}
		n := 0
		for _, r := range ds.Records {
			if m.Match(r) {
				n++
			}
		}
		out[ext.Name] = n
	}
	return out
}

// Reload rebuilds id from its source files and returns the new status.
func (e *Engine) Reload(ctx context.Context, id string) (st cache.Status, err error) {
	start := time.Now()
	defer func() { e.observe(id, "reload", start, err) }()

	if _, err := e.lookup(id); err != nil {
		return cache.Status{}, err
	}
	if _, err := e.store.Reload(ctx, id); err != nil {
		st, _ = e.store.Status(id)
		return st, err
	}
	st, _ = e.store.Status(id)
	return st, nil
}

// Values returns the distinct non-empty values of field in id, sorted
// ascending or, with desc, descending.
func (e *Engine) Values(ctx context.Context, id, field string, desc bool) ([]string, error) {
	cd, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	if !cd.spec.HasField(field) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, id, field)
	}
	ds, err := e.store.Load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return query.Distinct(ds.Records, field, desc), nil
}

// Export returns every record of id matching c, sorted, as a table of the
// dataset's export columns. An empty selection fails with export.ErrNoData.
func (e *Engine) Export(ctx context.Context, id string, c query.Criteria) (t export.Table, err error) {
	start := time.Now()
	defer func() { e.observe(id, "export", start, err) }()

	cd, err := e.lookup(id)
	if err != nil {
		return export.Table{}, err
	}
	ds, err := e.store.Load(ctx, id, false)
	if err != nil {
		return export.Table{}, err
	}
	return export.Build(id, cd.spec.Export, query.Select(ds, cd.spec, c))
}

// Summary is the dashboard line of one dataset.
type Summary struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Total        int                `json:"total"`
	Rates        map[string]float64 `json:"rates"`
	LoadedAt     time.Time          `json:"loaded_at"`
	LastModified time.Time          `json:"last_modified,omitempty"`
	Missing      []string           `json:"missing,omitempty"`
	Err          string             `json:"error,omitempty"`
}

// Summary loads every dataset and reports its unfiltered totals and rates.
// A dataset that fails to load is reported with its error instead of
// failing the whole summary.
func (e *Engine) Summary(ctx context.Context) []Summary {
	ids := e.store.IDs()
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		cd := e.compiled[id]
		s := Summary{ID: id, Title: cd.spec.Title}

		ds, err := e.store.Load(ctx, id, false)
		if err != nil {
			s.Err = err.Error()
			out = append(out, s)
			continue
		}
		b := stats.Compute(ds.Records, cd.plan, stats.Env{
			Dataset:   id,
			Externals: e.externals(ctx, id, cd),
			Quality:   ds.Quality,
		})
		s.Total = b.Total
		s.Rates = b.Rates
		s.LoadedAt = ds.LoadedAt
		s.LastModified = ds.LastModified()
		s.Missing = ds.MissingSources()
		out = append(out, s)
	}
	return out
}
