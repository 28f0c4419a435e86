package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcache/internal/config"
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/normalize"
	"reportcache/internal/stats"
	"reportcache/pkg/records"
)

/*
Every built-in pipeline must lint clean and compile: a broken catalog would
only surface at the first request otherwise.
*/
func TestDefault_ValidatesAndCompiles(t *testing.T) {
	specs := Default()
	ids := make(map[string]bool, len(specs))
	for _, s := range specs {
		require.False(t, ids[s.ID], "duplicate dataset id %q", s.ID)
		ids[s.ID] = true
	}

	for _, s := range specs {
		t.Run(s.ID, func(t *testing.T) {
			issues := dataset.Validate(s)
			for _, i := range issues {
				t.Logf("%v", i)
			}
			assert.False(t, config.HasErrors(issues))
			assert.Empty(t, issues, "built-in specs carry no warnings either")

			_, err := normalize.New(s)
			require.NoError(t, err)

			for _, e := range s.Report.Externals {
				assert.True(t, ids[e.Dataset], "external %q names unknown dataset %q", e.Name, e.Dataset)
			}
		})
	}
}

func TestDefault_FreshCopies(t *testing.T) {
	a, b := Default(), Default()
	a[0].Thresholds["meta_efectividad"] = 1
	a[1].Filters[0].Param = "changed"

	assert.Equal(t, 95.0, b[0].Thresholds["meta_efectividad"])
	assert.Equal(t, "tipo_sistema", b[1].Filters[0].Param)
}

func normalized(t *testing.T, s *dataset.Spec, recs []records.Record) []records.Record {
	t.Helper()
	n, err := normalize.New(s)
	require.NoError(t, err)
	out, _ := n.Run(recs)
	for i, r := range out {
		r[dataset.FieldID] = i + 1
	}
	return out
}

func TestNNCC_EmpalmeClassifier(t *testing.T) {
	tests := []struct {
		raw  any
		want any
	}{
		{raw: "bueno", want: "BUENO"},
		{raw: "Bien", want: "BUENO"},
		{raw: "mal", want: "MALO"},
		{raw: "regular", want: "REGULAR"},
		{raw: "#N/D", want: "SIN DATO"},
		{raw: "220", want: "SIN DATO"},
		{raw: "", want: "SIN INSPECCIONAR"},
		{raw: nil, want: "SIN INSPECCIONAR"},
		{raw: "quemado", want: dataset.Unclassifiable},
	}
	for _, tt := range tests {
		out := normalized(t, NNCC(), []records.Record{{"estado_empalme": tt.raw}})
		assert.Equal(t, tt.want, out[0]["empalme"], "raw %v", tt.raw)
	}
}

/*
Six effective inspections whose clients all answered disconforme: the
satisfaction warning fires at 0%. With no answers at all it stays silent.
*/
func TestNNCC_SatisfactionWarning(t *testing.T) {
	s := NNCC()
	p, err := stats.Compile(s.Report)
	require.NoError(t, err)

	titles := func(cliente string) []string {
		raw := make([]records.Record, 6)
		for i := range raw {
			raw[i] = records.Record{"estado_efectividad": "EFECTIVA", "cliente_conforme": cliente}
		}
		b := stats.Compute(normalized(t, s, raw), p, stats.Env{Dataset: s.ID})
		var out []string
		for _, in := range insight.Generate(b, s.Insights, s.Thresholds) {
			out = append(out, in.Title)
			if in.Title == "Atención en satisfacción" {
				assert.Equal(t, "Solo 0% de clientes están conformes", in.Message)
			}
		}
		return out
	}

	assert.Contains(t, titles("CLIENTE DISCONFORME"), "Atención en satisfacción")
	assert.NotContains(t, titles(""), "Atención en satisfacción")
}

func TestTeleco_Classifiers(t *testing.T) {
	out := normalized(t, Teleco(), []records.Record{
		{"empresa": "Entel Telecomunicaciones S.A.", "tiene_plano": "si", "estado_caso": "New Feasibility"},
		{"empresa": "Ufinet Chile", "tiene_plano": "2 de 6", "estado_caso": "In Progress - review"},
		{"empresa": "Claro", "tiene_plano": "incompleto", "estado_caso": "Closed"},
		{"empresa": "", "tiene_plano": "", "estado_caso": ""},
	})

	got := make([][3]any, len(out))
	for i, r := range out {
		got[i] = [3]any{r["empresa_corta"], r["plano"], r["estado_simple"]}
	}
	assert.Equal(t, [][3]any{
		{"ENTEL", "SI", "NEW FEASIBILITY"},
		{"UFINET", "PARCIAL", "IN PROGRESS"},
		{"Claro", "INCOMPLETO", "OTRO"},
		{nil, nil, nil},
	}, got)
}

func TestCalidad_InstallationIgnoresAnormal(t *testing.T) {
	out := normalized(t, Calidad(), []records.Record{
		{"estado_acometida": "Normal"},
		{"estado_acometida": "ANORMAL"},
		{"estado_acometida": "cable expuesto"},
		{"estado_acometida": ""},
	})
	assert.Equal(t, "NORMAL", out[0]["acometida"])
	assert.Equal(t, "ANORMAL", out[1]["acometida"])
	assert.Equal(t, "ANORMAL", out[2]["acometida"])
	assert.Nil(t, out[3]["acometida"])
}

func TestCalidad_AnomalyRateSumsCounts(t *testing.T) {
	s := Calidad()
	recs := normalized(t, s, []records.Record{
		{"modelo_corresponde": "NO", "perno_normalizado": "NO", "fecha_inspeccion": "05/03/2025"},
		{"medidor_corresponde": "NO", "fecha_inspeccion": "06/03/2025"},
		{"requiere_normalizacion": "x", "fecha_inspeccion": "07/03/2025"},
		{"modelo_corresponde": "SI", "fecha_inspeccion": "08/03/2025"},
	})
	p, err := stats.Compile(s.Report)
	require.NoError(t, err)

	b := stats.Compute(recs, p, stats.Env{Dataset: s.ID, Externals: map[string]int{"solicitadas": 8}})
	assert.Equal(t, 100.0, b.Rates["anomalias"], "four anomalies over four records")
	assert.Equal(t, 50.0, b.Rates["anomalias_equipo"], "model and meter mismatches only")

	require.Len(t, b.Evolution, 1)
	assert.Equal(t, 50.0, b.Evolution[0].Rates["anomalias_equipo"])
	assert.NotContains(t, b.Evolution[0].Rates, "anomalias")
	assert.Equal(t, 50.0, b.Rates["ejecucion"])
}

/*
Ten cut inspections, three well executed: quality is 30% and the low
quality warning fires without its success counterpart.
*/
func TestCorte_LowQualityInsight(t *testing.T) {
	s := Corte()
	raw := make([]records.Record, 10)
	for i := range raw {
		motivo := "MAL EJECUTADO"
		if i < 3 {
			motivo = "BIEN EJECUTADO"
		}
		raw[i] = records.Record{"motivo_multa": motivo, "multa": "NO", "fecha_inspeccion": "05/03/2025"}
	}
	recs := normalized(t, s, raw)

	p, err := stats.Compile(s.Report)
	require.NoError(t, err)
	b := stats.Compute(recs, p, stats.Env{Dataset: s.ID})
	require.Equal(t, 30.0, b.Rates["calidad"])

	got := insight.Generate(b, s.Insights, s.Thresholds)
	var warned bool
	for _, in := range got {
		assert.NotEqual(t, insight.Success, in.Severity, "unexpected %q", in.Title)
		if in.Title == "Tasa de calidad baja" {
			warned = true
			assert.Contains(t, in.Message, "30%")
		}
	}
	assert.True(t, warned)
}
