package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcache/internal/dataset"
	"reportcache/internal/match"
	"reportcache/pkg/records"
)

func testSpec() *dataset.Spec {
	return &dataset.Spec{
		ID:      "demo",
		Headers: map[string]string{"Fecha": "fecha", "Estado": "estado"},
		Fields: []dataset.Field{
			{Name: "fecha", Kind: dataset.Date},
			{Name: "estado", Kind: dataset.Upper},
			{Name: "monto", Kind: dataset.Number},
		},
		PeriodFrom: "fecha",
		Classifiers: []dataset.Classifier{{
			Field: "estado",
			Into:  "resultado",
			Rules: []dataset.Rule{
				{Tag: "OK", When: match.Condition{Contains: "EFECTIVA", Unless: "NO EFECTIVA"}},
				{Tag: "KO", When: match.Condition{Contains: "NO EFECTIVA"}},
			},
		}},
	}
}

func TestRun_CoercesDerivesAndClassifies(t *testing.T) {
	n, err := New(testSpec())
	require.NoError(t, err)

	recs := []records.Record{
		{"fecha": "15/03/2025", "estado": " efectiva "},
		{"fecha": "basura", "estado": "No efectiva", "monto": "1,5"},
		{"fecha": nil, "estado": "???"},
	}
	out, quality := n.Run(recs)
	require.Len(t, out, 3, "no record is dropped")

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), out[0]["fecha"])
	assert.Equal(t, "2025-03", out[0]["periodo"])
	assert.Equal(t, "EFECTIVA", out[0]["estado"])
	assert.Equal(t, "OK", out[0]["resultado"])
	assert.Nil(t, out[0]["monto"], "unmapped field is filled with nil")

	assert.Nil(t, out[1]["fecha"])
	assert.Nil(t, out[1]["periodo"])
	assert.Equal(t, 1.5, out[1]["monto"])
	assert.Equal(t, "KO", out[1]["resultado"])

	assert.Equal(t, "UNCLASSIFIABLE", out[2]["resultado"])
	assert.Equal(t, map[string]int{"resultado": 1}, quality)
}

func TestNew_RejectsBadRule(t *testing.T) {
	spec := testSpec()
	spec.Classifiers[0].Rules = append(spec.Classifiers[0].Rules, dataset.Rule{Tag: "X", When: match.Condition{Unless: "Y"}})
	_, err := New(spec)
	require.Error(t, err)
}
