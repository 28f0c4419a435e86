package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/stats"
)

// Corte describes supply cut and reconnection inspections.
func Corte() *dataset.Spec {
	return &dataset.Spec{
		ID:      "corte",
		Title:   "Corte y reposición",
		Sources: []dataset.Source{{File: "informe_corte.csv"}},

		Headers: headers(
			"N", "numero",
			"ASIGNADO", "fecha_asignado",
			"VENCE", "fecha_vence",
			"ESTADO", "estado",
			"ACCION COBRO", "accion_cobro",
			"EMPRESA", "empresa",
			"CEN OPERATIVO", "centro_operativo",
			"NRO SUMINISTRO", "suministro",
			"NOMBRE", "nombre_cliente",
			"DIRECCION", "direccion",
			"COMUNA", "comuna",
			"NRO APARATO", "nro_medidor",
			"SITUACION A INSPECCIONAR", "situacion_a_inspeccionar",
			"GIRO PROPIEDAD", "giro",
			"ZONA", "zona",
			"SITUACION ENCONTRADA", "situacion_encontrada",
			"SITUACIÓN DEJADA", "situacion_dejada",
			"SI NO FUE CORTADO ¿ES FACTIBLE CORTAR?", "es_factible_cortar",
			"TIPO EMPALME", "tipo_empalme",
			"MOTIVO MULTA", "motivo_multa",
			"MULTA", "multa",
			"NOMBRE DEL INSPECTOR", "inspector",
			"FECHA INSPECCION", "fecha_inspeccion",
		),
		Fields: fields(
			of(dataset.Code, "numero", "suministro", "nro_medidor"),
			of(dataset.Text, "empresa", "nombre_cliente", "direccion"),
			of(dataset.Upper, "estado", "accion_cobro", "centro_operativo", "comuna",
				"situacion_a_inspeccionar", "giro", "zona", "situacion_encontrada",
				"situacion_dejada", "es_factible_cortar", "tipo_empalme", "motivo_multa",
				"multa", "inspector"),
			of(dataset.Date, "fecha_asignado", "fecha_vence", "fecha_inspeccion"),
		),
		PeriodFrom: "fecha_inspeccion",

		Search: []string{"suministro", "nombre_cliente", "direccion", "comuna", "inspector", "nro_medidor"},
		Filters: append([]dataset.Filter{
			filter("zona", "zona", dataset.Equal),
			filter("centro_operativo", "centro_operativo", dataset.Equal),
			filter("comuna", "comuna", dataset.Equal),
			filter("inspector", "inspector", dataset.Contains),
			filter("situacion_encontrada", "situacion_encontrada", dataset.Contains),
			filter("motivo_multa", "motivo_multa", dataset.Contains),
		}, periodFilters()...),
		DefaultSort:  dataset.FieldID,
		DefaultOrder: "desc",

		Export: columns(map[string]int{
			"nombre_cliente":       25,
			"direccion":            35,
			"comuna":               15,
			"inspector":            20,
			"situacion_encontrada": 25,
			"motivo_multa":         20,
		},
			"id", "ID",
			"numero", "N°",
			"suministro", "Suministro",
			"nombre_cliente", "Nombre",
			"direccion", "Dirección",
			"comuna", "Comuna",
			"zona", "Zona",
			"centro_operativo", "Centro operativo",
			"nro_medidor", "Medidor",
			"fecha_inspeccion", "Fecha inspección",
			"inspector", "Inspector",
			"situacion_encontrada", "Situación encontrada",
			"situacion_dejada", "Situación dejada",
			"motivo_multa", "Motivo multa",
			"multa", "Multa",
		),

		Report: stats.Report{
			Counts: []stats.Count{
				count("realizadas", containsUnless("estado", "REALIZADA", "NO REALIZADA")),
				count("bien_ejecutados", contains("motivo_multa", "BIEN EJECUTADO")),
				count("no_ejecutados", contains("motivo_multa", "NO EJECUTADO")),
				count("con_multa", equals("multa", "SI")),
				count("sin_multa", equals("multa", "NO")),
				count("factible", equals("es_factible_cortar", "SI")),
				count("no_factible", equals("es_factible_cortar", "NO")),
				count("zonas_peligrosas", contains("situacion_encontrada", "ZONA PELIGROSA")),
				count("no_ubicados", contains("situacion_encontrada", "NO UBICADO")),
			},
			Rates: []stats.Rate{
				{Name: "ejecucion", Of: "realizadas"},
				{Name: "calidad", Of: "bien_ejecutados"},
				{Name: "multa", Of: "con_multa"},
				{Name: "peligrosas", Of: "zonas_peligrosas"},
				{Name: "no_ubicados", Of: "no_ubicados"},
				{Name: "factibilidad", Of: "factible", Over: []string{"factible", "no_factible"}},
			},
			Breakdowns: []stats.Breakdown{
				{Name: "situaciones_encontradas", Field: "situacion_encontrada"},
				{Name: "situaciones_a_inspeccionar", Field: "situacion_a_inspeccionar"},
				{Name: "zonas", Field: "zona", Rate: "bien_ejecutados"},
				{Name: "centros", Field: "centro_operativo", Rate: "bien_ejecutados"},
				{Name: "comunas", Field: "comuna", Top: 15},
				{Name: "inspectores", Field: "inspector", Rate: "bien_ejecutados"},
				{Name: "giros", Field: "giro", Top: 10},
				{Name: "empalmes", Field: "tipo_empalme"},
				{Name: "acciones_cobro", Field: "accion_cobro"},
			},
			Evolution: &stats.Evolution{
				Field:  "fecha_inspeccion",
				By:     stats.Monthly,
				Window: 12,
				Counts: []string{"bien_ejecutados", "con_multa"},
				Rates:  []string{"calidad", "multa"},
			},
			Comparisons: []stats.Comparison{
				{Name: "calidad", Rate: "calidad", Field: "fecha_inspeccion", Mode: stats.Periods},
				{Name: "multa", Rate: "multa", Field: "fecha_inspeccion", Mode: stats.Periods},
			},
			Ranking: &stats.Ranking{
				Field: "comuna",
				Weights: []stats.Weight{
					{Count: "con_multa", Weight: 1},
					{Count: "no_ejecutados", Weight: 1},
				},
				MinSample: 5,
				Top:       5,
			},
		},

		Insights: []insight.Rule{
			warning("rates.calidad", insight.Below, "meta_calidad", "Tasa de calidad baja",
				"Solo el {value}% de las inspecciones fueron bien ejecutadas"),
			success("rates.calidad", insight.AtLeast, "calidad_excelente", "Excelente calidad de ejecución",
				"El {value}% de las inspecciones fueron bien ejecutadas"),
			warning("rates.multa", insight.Above, "multa_alta", "Alto porcentaje de multas",
				"{value}% de los casos presentan multa"),
			info("rates.peligrosas", insight.Above, "peligrosas_altas", "Zonas peligrosas detectadas",
				"{value}% de los casos en zonas peligrosas"),
			warning("rates.no_ubicados", insight.Above, "no_ubicados_altos", "Alto porcentaje de no ubicados",
				"{value}% de los casos no fueron ubicados"),
			between(info("rates.factibilidad", "", "factibilidad_baja", "Baja factibilidad de corte",
				"Solo el {value}% de los casos es factible cortar"), "sin_factibles"),
		},
		Thresholds: map[string]float64{
			"meta_calidad":      80,
			"calidad_excelente": 95,
			"multa_alta":        5,
			"peligrosas_altas":  10,
			"no_ubicados_altos": 15,
			"factibilidad_baja": 49.9,
			"sin_factibles":     0,
		},
	}
}
