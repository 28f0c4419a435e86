package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcache/internal/match"
	"reportcache/internal/stats"
	"reportcache/pkg/records"
)

func completionRules() []Rule {
	return []Rule{
		{
			Metric: "rates.ejecucion", Op: Below, Threshold: "ejecucion_baja",
			Severity: Warning, Title: "Baja ejecución",
			Message: "Solo el {value}% de las órdenes fue bien ejecutado (meta {threshold}%).",
		},
		{
			Metric: "rates.ejecucion", Op: AtLeast, Threshold: "ejecucion_meta",
			Severity: Success, Title: "Meta cumplida",
			Message: "El {value}% de las órdenes fue bien ejecutado.",
		},
	}
}

/*
TestGenerate_LowRateScenario runs the full aggregation on ten records, three
of them well executed, and checks that the 30% rate emits the low-rate
warning mentioning 30 and no success insight.
*/
func TestGenerate_LowRateScenario(t *testing.T) {
	var recs []records.Record
	for i := 0; i < 10; i++ {
		estado := "MAL EJECUTADO"
		if i < 3 {
			estado = "BIEN EJECUTADO"
		}
		recs = append(recs, records.Record{"estado": estado})
	}
	plan, err := stats.Compile(stats.Report{
		Counts: []stats.Count{{Name: "bien_ejecutado", When: match.Condition{Field: "estado", Contains: "BIEN EJECUTADO"}}},
		Rates:  []stats.Rate{{Name: "ejecucion", Of: "bien_ejecutado"}},
	})
	require.NoError(t, err)
	b := stats.Compute(recs, plan, stats.Env{})
	require.Equal(t, 3, b.Counts["bien_ejecutado"])
	require.Equal(t, 30.0, b.Rates["ejecucion"])

	got := Generate(b, completionRules(), map[string]float64{"ejecucion_baja": 50, "ejecucion_meta": 80})
	require.Len(t, got, 1)
	assert.Equal(t, Warning, got[0].Severity)
	assert.Contains(t, got[0].Message, "30%")
	assert.Contains(t, got[0].Message, "meta 50%")
	for _, in := range got {
		assert.NotEqual(t, Success, in.Severity)
	}
}

func TestGenerate_MissingThresholdSkipsRule(t *testing.T) {
	b := stats.Bundle{Total: 10, Rates: map[string]float64{"ejecucion": 30}}
	got := Generate(b, completionRules(), map[string]float64{"ejecucion_meta": 80})
	assert.Empty(t, got)
}

func TestGenerate_Ops(t *testing.T) {
	b := stats.Bundle{
		Total:  40,
		Counts: map[string]int{"rechazados": 12, "aprobados": 10, "sin": 3},
		Rates:  map[string]float64{"r": 4.25},
		Comparisons: map[string]stats.Delta{
			"tendencia": {Actual: 90, Previous: 95, Difference: -5, Available: true},
			"vacia":     {},
		},
		Breakdowns: map[string][]stats.Bucket{"zonas": {{Category: "SUR", Count: 9}, {Category: "NORTE", Count: 2}}},
		Ranking:    []stats.Ranked{{Category: "MAIPU", Total: 20, Score: 14}},
	}
	th := map[string]float64{"caida": -3, "bajo": 2, "alto": 5}

	cases := []struct {
		name string
		rule Rule
		want string
		fire bool
	}{
		{"at most on delta", Rule{Metric: "comparisons.tendencia", Op: AtMost, Threshold: "caida", Message: "bajó {abs} puntos ({previous} → {actual})"}, "bajó 5 puntos (95 → 90)", true},
		{"unavailable comparison", Rule{Metric: "comparisons.vacia", Op: Always, Message: "x"}, "", false},
		{"between", Rule{Metric: "rates.r", Op: Between, Low: "bajo", Threshold: "alto", Message: "{value} entre {low} y {threshold}"}, "4.3 entre 2 y 5", true},
		{"exceeds other", Rule{Metric: "counts.rechazados", Op: Exceeds, Other: "counts.aprobados", Message: "{value} > {other}"}, "12 > 10", true},
		{"exceeds with factor", Rule{Metric: "counts.sin", Op: Exceeds, Other: "counts.aprobados", Factor: 0.2, Message: "x"}, "x", true},
		{"top breakdown", Rule{Metric: "breakdowns.zonas", Op: Always, Message: "{category}: {count} de {total}"}, "SUR: 9 de 40", true},
		{"ranking", Rule{Metric: "ranking", Op: Above, Threshold: "alto", Message: "{category} {value}"}, "MAIPU 14", true},
		{"spread", Rule{Metric: "spread.zonas", Op: Above, Threshold: "bajo", Message: "{value}"}, "4.5", true},
		{"unknown metric", Rule{Metric: "rates.nada", Op: Always, Message: "x"}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Generate(b, []Rule{tc.rule}, th)
			if !tc.fire {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tc.want, got[0].Message)
		})
	}
}

/*
An empty bundle is zero-filled, so every "below target" rule would match.
None may fire.
*/
func TestGenerate_EmptyBundle(t *testing.T) {
	plan, err := stats.Compile(stats.Report{
		Counts: []stats.Count{{Name: "bien_ejecutado", When: match.Condition{Field: "estado", Contains: "BIEN"}}},
		Rates:  []stats.Rate{{Name: "ejecucion", Of: "bien_ejecutado"}},
	})
	require.NoError(t, err)
	b := stats.Compute(nil, plan, stats.Env{})
	require.Equal(t, 0.0, b.Rates["ejecucion"])

	rules := append(completionRules(), Rule{Metric: "total", Op: Always, Message: "x"})
	got := Generate(b, rules, map[string]float64{"ejecucion_baja": 50, "ejecucion_meta": 80})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

/*
A rate over an empty sub-population is not a rate of zero: rules on it are
skipped while rules on defined rates still fire.
*/
func TestGenerate_UndefinedRate(t *testing.T) {
	plan, err := stats.Compile(stats.Report{
		Counts: []stats.Count{
			{Name: "conformes", When: match.Condition{Field: "cliente", Contains: "CONFORME", Unless: "DISCONFORME"}},
			{Name: "disconformes", When: match.Condition{Field: "cliente", Contains: "DISCONFORME"}},
			{Name: "efectivas", When: match.Condition{Field: "estado", Contains: "EFECTIVA", Unless: "NO EFECTIVA"}},
		},
		Rates: []stats.Rate{
			{Name: "conformidad", Of: "conformes", Over: []string{"conformes", "disconformes"}},
			{Name: "efectividad", Of: "efectivas"},
		},
	})
	require.NoError(t, err)
	rules := []Rule{
		{Metric: "rates.conformidad", Op: Below, Threshold: "meta", Message: "conformidad {value}"},
		{Metric: "ratios.conformidad", Op: Below, Threshold: "meta", Message: "exacta {value}"},
		{Metric: "rates.efectividad", Op: Below, Threshold: "meta", Message: "efectividad {value}"},
	}
	th := map[string]float64{"meta": 90}

	unanswered := []records.Record{{"estado": "NO EFECTIVA"}, {"estado": "EFECTIVA"}}
	b := stats.Compute(unanswered, plan, stats.Env{})
	got := Generate(b, rules, th)
	require.Len(t, got, 1)
	assert.Equal(t, "efectividad 50", got[0].Message)

	disconformes := []records.Record{
		{"estado": "EFECTIVA", "cliente": "CLIENTE DISCONFORME"},
		{"estado": "EFECTIVA", "cliente": "CLIENTE DISCONFORME"},
	}
	b = stats.Compute(disconformes, plan, stats.Env{})
	got = Generate(b, rules, th)
	require.Len(t, got, 2)
	assert.Equal(t, "conformidad 0", got[0].Message)
	assert.Equal(t, "exacta 0", got[1].Message)
}

/*
899 conformes out of 999 answers is 89.99%. The rounded rate reads 90 and
misses a 90% target; the ratio compares unrounded and fires.
*/
func TestGenerate_RatioIsUnrounded(t *testing.T) {
	b := stats.Bundle{
		Total:  999,
		Rates:  map[string]float64{"conformidad": 90},
		Ratios: map[string]stats.Ratio{"conformidad": {Num: 899, Den: 999}},
	}
	th := map[string]float64{"meta": 90}

	assert.Empty(t, Generate(b, []Rule{{Metric: "rates.conformidad", Op: Below, Threshold: "meta"}}, th))
	got := Generate(b, []Rule{{Metric: "ratios.conformidad", Op: Below, Threshold: "meta", Message: "{value}%"}}, th)
	require.Len(t, got, 1)
	assert.Equal(t, "90%", got[0].Message)
}

func TestGenerate_UnlessFiltered(t *testing.T) {
	b := stats.Bundle{Total: 10, Breakdowns: map[string][]stats.Bucket{"zonas": {{Category: "SUR", Count: 9}, {Category: "NORTE", Count: 1}}}}
	rules := []Rule{{Metric: "spread.zonas", Op: Always, Message: "x", UnlessFiltered: "zona"}}

	assert.Len(t, Generate(b, rules, nil), 1)
	b.Filters = []string{"zona"}
	assert.Empty(t, Generate(b, rules, nil))
}

func TestGenerate_OrderIsRuleOrder(t *testing.T) {
	b := stats.Bundle{Total: 3}
	rules := []Rule{
		{Metric: "total", Op: Always, Title: "b"},
		{Metric: "total", Op: Always, Title: "a"},
	}
	got := Generate(b, rules, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "a", got[1].Title)
}
