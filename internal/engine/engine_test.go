package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"reportcache/internal/cache"
	"reportcache/internal/catalog"
	"reportcache/internal/dataset"
	"reportcache/internal/export"
	"reportcache/internal/insight"
	"reportcache/internal/match"
	"reportcache/internal/query"
	"reportcache/internal/stats"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

// execSpec measures executed orders against the requested population held
// by reqSpec.
func execSpec() *dataset.Spec {
	typeA := match.Condition{Field: "tipo", Equals: []string{"A"}}
	return &dataset.Spec{
		ID:      "exec",
		Title:   "Ejecutadas",
		Sources: []dataset.Source{{File: "exec.csv"}},
		Headers: map[string]string{"Estado": "estado", "Fecha": "fecha", "Tipo": "tipo"},
		Fields: []dataset.Field{
			{Name: "estado", Kind: dataset.Upper},
			{Name: "fecha", Kind: dataset.Date},
			{Name: "tipo", Kind: dataset.Upper},
		},
		PeriodFrom: "fecha",
		Search:     []string{"estado"},
		Filters: []dataset.Filter{
			{Param: "estado", Field: "estado", Op: dataset.Equal},
			{Param: "tipo", Field: "tipo", Op: dataset.Equal},
		},
		DefaultSort:  "fecha",
		DefaultOrder: "asc",
		Export: []export.Column{
			{Field: "id", Header: "ID"},
			{Field: "estado", Header: "Estado"},
		},
		Report: stats.Report{
			Externals: []stats.External{
				{Name: "solicitadas", Dataset: "req"},
				{Name: "solicitadas_a", Dataset: "req", When: &typeA},
			},
			Counts: []stats.Count{
				{Name: "ejecutadas", When: match.Condition{Field: "id", Present: true}},
				{Name: "ejecutadas_a", When: typeA},
			},
			Rates: []stats.Rate{
				{Name: "ejecucion", Of: "ejecutadas", Over: []string{"solicitadas"}},
				{Name: "ejecucion_a", Of: "ejecutadas_a", Over: []string{"solicitadas_a"}},
			},
			Evolution: &stats.Evolution{Field: "fecha", By: stats.Monthly, Counts: []string{"ejecutadas"}},
		},
		Insights: []insight.Rule{{
			Metric:    "rates.ejecucion",
			Op:        insight.Below,
			Threshold: "meta",
			Severity:  insight.Warning,
			Title:     "Baja ejecución",
			Message:   "{value}% ejecutado",
		}},
		Thresholds: map[string]float64{"meta": 80},
	}
}

func reqSpec() *dataset.Spec {
	return &dataset.Spec{
		ID:      "req",
		Title:   "Solicitadas",
		Sources: []dataset.Source{{File: "req.csv"}},
		Headers: map[string]string{"Tipo": "tipo"},
		Fields:  []dataset.Field{{Name: "tipo", Kind: dataset.Upper}},
	}
}

const (
	execCSV = "Estado,Fecha,Tipo\nok,05/01/2025,a\nok,05/02/2025,b\nfallo,05/03/2025,a\n"
	reqCSV  = "Tipo\nA\nA\nA\nB\nB\nB\n"
)

func newEngine(t *testing.T, dir string, specs []*dataset.Spec, opts ...Option) *Engine {
	t.Helper()
	store, err := cache.New(dir, specs)
	require.NoError(t, err)
	e, err := New(store, opts...)
	require.NoError(t, err)
	return e
}

func corteCSV(n, good int) string {
	var b strings.Builder
	b.WriteString("NRO SUMINISTRO,COMUNA,MOTIVO MULTA,MULTA,FECHA INSPECCION\n")
	for i := 0; i < n; i++ {
		motivo := "MAL EJECUTADO"
		if i < good {
			motivo = "BIEN EJECUTADO"
		}
		fmt.Fprintf(&b, "%d,MAIPU,%s,NO,%02d/03/2025\n", 1000+i, motivo, i%28+1)
	}
	return b.String()
}

/*
Ten cut orders, three of them well executed. The quality rate is 30%, the
low-quality warning mentions it and no success insight fires even though
other rules are evaluated.
*/
func TestStats_CorteEndToEnd(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "informe_corte.csv", corteCSV(10, 3))
	e := newEngine(t, dir, []*dataset.Spec{catalog.Corte()})

	rep, err := e.Stats(context.Background(), "corte", query.Criteria{})
	require.NoError(t, err)
	require.Equal(t, 10, rep.Total)
	assert.Equal(t, 30.0, rep.Rates["calidad"])

	var warned bool
	for _, in := range rep.Insights {
		assert.NotEqual(t, insight.Success, in.Severity, in.Title)
		if in.Severity == insight.Warning && strings.Contains(in.Message, "30%") {
			warned = true
		}
	}
	assert.True(t, warned, "insights: %+v", rep.Insights)
}

func TestQuery_PagesCoverFilteredSet(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "informe_corte.csv", corteCSV(10, 3))
	e := newEngine(t, dir, []*dataset.Spec{catalog.Corte()})
	ctx := context.Background()

	seen := map[any]int{}
	for page := 1; page <= 4; page++ {
		res, err := e.Query(ctx, "corte", query.Criteria{Page: page, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 10, res.Total, "total does not depend on the page")
		assert.Equal(t, 4, res.Pages)
		for _, r := range res.Items {
			seen[r["id"]]++
		}
	}
	assert.Len(t, seen, 10)
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %v", id)
	}

	res, err := e.Query(ctx, "corte", query.Criteria{Filters: map[string]string{"motivo_multa": "bien"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
}

func TestStats_ExternalPopulation(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	write(t, dir, "req.csv", reqCSV)
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()})

	rep, err := e.Stats(context.Background(), "exec", query.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 50.0, rep.Rates["ejecucion"])
	assert.Equal(t, 66.7, rep.Rates["ejecucion_a"])
	require.Len(t, rep.Insights, 1)
	assert.Equal(t, "50% ejecutado", rep.Insights[0].Message)

	rep, err = e.Stats(context.Background(), "exec", query.Criteria{Filters: map[string]string{"tipo": "a"}})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 33.3, rep.Rates["ejecucion"], "the population is not filtered")
	assert.Equal(t, []string{"tipo"}, rep.Filters)
}

/*
A population that cannot be loaded counts as zero: the stats call succeeds
and the failure is logged as a warning.
*/
func TestStats_ExternalUnavailable(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "req.csv"), 0o755))

	core, logs := observer.New(zapcore.WarnLevel)
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()}, WithLogger(zap.New(core)))

	rep, err := e.Stats(context.Background(), "exec", query.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 0.0, rep.Rates["ejecucion"])
	assert.Empty(t, rep.Insights, "a rate over no population is not below target")
	assert.Equal(t, 2, logs.FilterMessage("external population unavailable").Len())
}

/*
With no source files every dataset loads empty: stats succeed with a zero
total and no insights, and so does a filter matching nothing.
*/
func TestStats_EmptyDatasetsHaveNoInsights(t *testing.T) {
	e := newEngine(t, t.TempDir(), catalog.Default())
	ctx := context.Background()

	for _, s := range catalog.Default() {
		t.Run(s.ID, func(t *testing.T) {
			rep, err := e.Stats(ctx, s.ID, query.Criteria{})
			require.NoError(t, err)
			assert.Equal(t, 0, rep.Total)
			assert.NotNil(t, rep.Insights)
			assert.Empty(t, rep.Insights)
		})
	}

	dir := t.TempDir()
	write(t, dir, "informe_corte.csv", corteCSV(10, 3))
	e = newEngine(t, dir, []*dataset.Spec{catalog.Corte()})
	rep, err := e.Stats(ctx, "corte", query.Criteria{Search: "no existe"})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Total)
	assert.Empty(t, rep.Insights)
}

func TestStats_Overrides(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	write(t, dir, "req.csv", reqCSV)
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()},
		WithThresholds(map[string]map[string]float64{"exec": {"meta": 40}}),
		WithWindows(map[string]int{"exec": 2}),
	)

	rep, err := e.Stats(context.Background(), "exec", query.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, rep.Insights, "50% is above the overridden target")

	require.Len(t, rep.Evolution, 2)
	assert.Equal(t, "2025-02", rep.Evolution[0].Period)
	assert.Equal(t, "2025-03", rep.Evolution[1].Period)
}

func TestUnknownDataset(t *testing.T) {
	e := newEngine(t, t.TempDir(), []*dataset.Spec{reqSpec()})
	ctx := context.Background()

	calls := []struct {
		name string
		fn   func() error
	}{
		{"query", func() error { _, err := e.Query(ctx, "nope", query.Criteria{}); return err }},
		{"stats", func() error { _, err := e.Stats(ctx, "nope", query.Criteria{}); return err }},
		{"export", func() error { _, err := e.Export(ctx, "nope", query.Criteria{}); return err }},
		{"values", func() error { _, err := e.Values(ctx, "nope", "tipo", false); return err }},
		{"reload", func() error { _, err := e.Reload(ctx, "nope"); return err }},
	}
	for _, c := range calls {
		assert.True(t, errors.Is(c.fn(), ErrUnknownDataset), c.name)
	}
}

func TestNew_ExternalOnUnknownDataset(t *testing.T) {
	store, err := cache.New(t.TempDir(), []*dataset.Spec{execSpec()})
	require.NoError(t, err)
	_, err = New(store)
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestValues(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	write(t, dir, "req.csv", reqCSV)
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()})
	ctx := context.Background()

	got, err := e.Values(ctx, "exec", "estado", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"OK", "FALLO"}, got)

	got, err = e.Values(ctx, "exec", "periodo", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, got)

	_, err = e.Values(ctx, "exec", "nope", false)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	write(t, dir, "req.csv", reqCSV)
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()})
	ctx := context.Background()

	tbl, err := e.Export(ctx, "exec", query.Criteria{Filters: map[string]string{"estado": "OK"}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "exec", tbl.Name)
	assert.Equal(t, []string{"id", "estado"}, tbl.Fields())
	assert.Len(t, tbl.Rows, 2, "export ignores pagination")

	_, err = e.Export(ctx, "exec", query.Criteria{Filters: map[string]string{"estado": "nada"}})
	assert.ErrorIs(t, err, export.ErrNoData)
}

func TestReload_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "req.csv", reqCSV)
	e := newEngine(t, dir, []*dataset.Spec{reqSpec()})
	ctx := context.Background()

	res, err := e.Query(ctx, "req", query.Criteria{})
	require.NoError(t, err)
	require.Equal(t, 6, res.Total)

	write(t, dir, "req.csv", "Tipo\nA\n")
	res, err = e.Query(ctx, "req", query.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total, "snapshot is kept until reload")

	st, err := e.Reload(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Records)
	assert.Equal(t, 2, st.Loads)
}

func TestSummary(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "exec.csv", execCSV)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "req.csv"), 0o755))
	e := newEngine(t, dir, []*dataset.Spec{execSpec(), reqSpec()})

	sum := e.Summary(context.Background())
	require.Len(t, sum, 2)

	assert.Equal(t, "exec", sum[0].ID)
	assert.Equal(t, 3, sum[0].Total)
	assert.Empty(t, sum[0].Err)
	assert.False(t, sum[0].LastModified.IsZero())
	assert.Contains(t, sum[0].Rates, "ejecucion")

	assert.Equal(t, "req", sum[1].ID)
	assert.NotEmpty(t, sum[1].Err)
}

func TestDatasets(t *testing.T) {
	e := newEngine(t, t.TempDir(), []*dataset.Spec{execSpec(), reqSpec()})
	infos := e.Datasets()
	require.Len(t, infos, 2)
	assert.Equal(t, "exec", infos[0].ID)
	assert.Equal(t, []string{"exec.csv"}, infos[0].Sources)
	assert.Equal(t, []string{"estado", "tipo"}, infos[0].Filters)
	assert.Contains(t, infos[0].Fields, "periodo")
}
