package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/stats"
)

// Teleco describes pole-attachment feasibility surveys for telecom
// operators.
func Teleco() *dataset.Spec {
	return &dataset.Spec{
		ID:      "teleco",
		Title:   "Telecomunicaciones",
		Sources: []dataset.Source{{File: "informe_teleco.csv"}},

		Headers: headers(
			"Family Case Number", "family_case",
			"Estado del Caso", "estado_caso",
			"Cantidad de Postes", "cantidad_postes",
			"Nombre de empresa / Cliente", "empresa",
			"Comuna", "comuna",
			"Fecha 1ra. Inspección", "fecha_primera_inspeccion",
			"Fecha que se asignó", "fecha_asignacion",
			"Fecha de inspección", "fecha_inspeccion",
			"TIENE PLANO?", "tiene_plano",
			"RESULTADO (ERICK)", "resultado",
			"Observación TERRENO", "observacion",
			"INSPECTOR", "inspector",
		),
		Fallbacks: []dataset.Fallback{{Keyword: "numero de caso", Field: "numero_caso"}},
		Fields: fields(
			of(dataset.Code, "family_case", "numero_caso"),
			of(dataset.Text, "estado_caso", "empresa", "observacion"),
			of(dataset.Upper, "comuna", "tiene_plano", "resultado", "inspector"),
			of(dataset.Date, "fecha_primera_inspeccion", "fecha_asignacion", "fecha_inspeccion"),
			of(dataset.Number, "cantidad_postes"),
		),
		PeriodFrom: "fecha_inspeccion",
		Elapsed:    []dataset.Elapsed{{Into: "dias_inspeccion", From: "fecha_asignacion", To: "fecha_inspeccion"}},
		Classifiers: []dataset.Classifier{
			{
				Field: "empresa",
				Into:  "empresa_corta",
				Rules: []dataset.Rule{
					rule("ENTEL", contains("", "Telecomunicaciones")),
					rule("UFINET", contains("", "Ufinet")),
					rule("WOM", contains("", "WOM")),
					rule("QMC", contains("", "QMC")),
					rule("ATP", contains("", "ATP")),
					rule("CIRION", contains("", "CIRION")),
				},
				Passthrough: true,
			},
			{
				Field: "tiene_plano",
				Into:  "plano",
				Rules: []dataset.Rule{
					rule("SI", equals("", "SI")),
					rule("NO", equals("", "NO")),
					rule("INCOMPLETO", contains("", "INCOMPLETO")),
					rule("PARCIAL", contains("", "DE")),
					rule("OTRO", present("")),
				},
			},
			{
				Field: "estado_caso",
				Into:  "estado_simple",
				Rules: []dataset.Rule{
					rule("NEW FEASIBILITY", contains("", "New Feasibility")),
					rule("IN PROGRESS", contains("", "In Progress")),
					rule("OTRO", present("")),
				},
			},
		},

		Search: []string{"empresa", "comuna", "inspector", "observacion", "numero_caso"},
		Filters: []dataset.Filter{
			filter("empresa", "empresa_corta", dataset.Equal),
			filter("comuna", "comuna", dataset.Equal),
			filter("inspector", "inspector", dataset.Contains),
			filter("resultado", "resultado", dataset.Equal),
			filter("tiene_plano", "plano", dataset.Equal),
			filter("fecha_desde", "fecha_inspeccion", dataset.DateFrom),
			filter("fecha_hasta", "fecha_inspeccion", dataset.DateTo),
		},
		DefaultSort:  "fecha_inspeccion",
		DefaultOrder: "desc",

		Export: columns(map[string]int{
			"empresa":     30,
			"comuna":      15,
			"inspector":   20,
			"observacion": 40,
		},
			"id", "ID",
			"numero_caso", "N° caso",
			"family_case", "Family case",
			"empresa", "Empresa",
			"empresa_corta", "Cliente",
			"comuna", "Comuna",
			"cantidad_postes", "Postes",
			"fecha_asignacion", "Fecha asignación",
			"fecha_inspeccion", "Fecha inspección",
			"dias_inspeccion", "Días",
			"plano", "Plano",
			"resultado", "Resultado",
			"inspector", "Inspector",
			"observacion", "Observación",
		),

		Report: stats.Report{
			Counts: []stats.Count{
				count("aprobados", equals("resultado", "APROBADO")),
				count("rechazados", equals("resultado", "RECHAZADO")),
				count("con_plano", equals("plano", "SI")),
				count("sin_plano", equals("plano", "NO")),
				count("plano_incompleto", equals("plano", "INCOMPLETO", "PARCIAL")),
				count("plano_faltante", equals("plano", "NO", "INCOMPLETO", "PARCIAL")),
			},
			Rates: []stats.Rate{
				{Name: "aprobacion", Of: "aprobados", Over: []string{"aprobados", "rechazados"}},
				{Name: "aprobacion_total", Of: "aprobados"},
				{Name: "con_plano", Of: "con_plano"},
			},
			Numbers: []stats.Number{
				{Name: "postes_total", Field: "cantidad_postes", Op: stats.Sum},
				{Name: "postes_promedio", Field: "cantidad_postes", Op: stats.Mean, Decimals: 1},
				{Name: "dias_promedio", Field: "dias_inspeccion", Op: stats.Mean, Decimals: 1},
			},
			Breakdowns: []stats.Breakdown{
				{Name: "empresas", Field: "empresa_corta", Top: 10, Rate: "aprobados", Sum: "cantidad_postes"},
				{Name: "comunas", Field: "comuna", Top: 15},
				{Name: "inspectores", Field: "inspector", Rate: "aprobados", Sum: "cantidad_postes"},
				{Name: "resultados", Field: "resultado"},
				{Name: "planos", Field: "plano"},
				{Name: "estados", Field: "estado_simple"},
			},
			Evolution: &stats.Evolution{
				Field:  "fecha_inspeccion",
				By:     stats.Monthly,
				Window: 12,
				Counts: []string{"aprobados", "rechazados"},
				Rates:  []string{"aprobacion"},
			},
			Comparisons: []stats.Comparison{
				{Name: "aprobacion", Rate: "aprobacion_total", Field: "fecha_inspeccion", Mode: stats.Halves},
			},
		},

		Insights: []insight.Rule{
			warning("rates.aprobacion", insight.Below, "meta_aprobacion", "Tasa de aprobación baja",
				"Solo {value}% de los casos fueron aprobados (meta: {threshold}%)"),
			success("rates.aprobacion", insight.AtLeast, "aprobacion_buena", "Buena tasa de aprobación",
				"{value}% de los casos fueron aprobados"),
			exceeds(warning("counts.rechazados", "", "", "Más rechazos que aprobaciones",
				"{value} rechazados vs {other} aprobados"), "counts.aprobados", 1),
			exceeds(info("counts.plano_faltante", "", "", "Casos sin plano completo",
				"{value} casos sin plano o con plano incompleto"), "counts.con_plano", 0.2),
			info("breakdowns.empresas", insight.Always, "", "Principal cliente: {category}",
				"{count} casos"),
			info("numbers.postes_total", insight.Always, "", "Total postes evaluados: {value}",
				"{value} postes en {total} casos"),
		},
		Thresholds: map[string]float64{
			"meta_aprobacion":  50,
			"aprobacion_buena": 60,
		},
	}
}
