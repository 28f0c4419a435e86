package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/stats"
)

// Lecturas describes meter-reading audit orders from the order desk, the
// regulator channel and virtual visits.
func Lecturas() *dataset.Spec {
	return &dataset.Spec{
		ID:    "lecturas",
		Title: "Lecturas",
		Sources: []dataset.Source{
			{File: "informe_lectura_ORDENES_ORDENES.csv", Origin: "ORDENES"},
			{File: "informe_lectura_SEC_SEC.csv", Origin: "SEC"},
			{File: "informe_lectura_VIRTUAL_VIRTUAL VISIT.csv", Origin: "VISITA VIRTUAL"},
			{File: "informe_lectura_VIRTUAL_VISITA VIRTUAL.csv", Origin: "VISITA VIRTUAL"},
		},
		OriginField: "origen",

		Headers: headers(
			"Orden", "orden",
			"Cliente", "cliente",
			"Fecha Ingreso", "fecha_ingreso",
			"Submotivo", "submotivo",
			"Canal Entrada", "canal_entrada",
			"Zona", "zona",
			"Medidor", "medidor",
			"Nombre", "nombre",
			"Direccion", "direccion",
			"Comuna", "comuna",
			"SECTOR", "sector",
			"INSPECTOR", "inspector",
			"FECHA DE VENCIMIENTO", "fecha_vencimiento",
			"FECHA INSP", "fecha_inspeccion",
			"HALLAZGO", "hallazgo",
			"ESTADO GENERAL", "estado_general",
			"ESTADO", "estado_plazo",
			"Fecha de respuesta", "fecha_respuesta",
		),
		Fallbacks: []dataset.Fallback{{Keyword: "gesti", Field: "gestion"}},
		Fields: fields(
			of(dataset.Code, "orden", "cliente", "medidor"),
			of(dataset.Text, "submotivo", "canal_entrada", "nombre", "direccion", "estado_plazo"),
			of(dataset.Upper, "zona", "comuna", "sector", "hallazgo", "estado_general", "gestion"),
			of(dataset.Title, "inspector"),
			of(dataset.Date, "fecha_ingreso", "fecha_vencimiento", "fecha_inspeccion", "fecha_respuesta"),
		),
		PeriodFrom: "fecha_ingreso",
		Elapsed:    []dataset.Elapsed{{Into: "dias_respuesta", From: "fecha_ingreso", To: "fecha_respuesta"}},
		Presence:   []dataset.Presence{{Into: "inspeccionado", Of: "fecha_inspeccion"}},

		Search: []string{"cliente", "nombre", "comuna", "inspector", "medidor", "direccion", "orden"},
		Filters: []dataset.Filter{
			filter("sector", "sector", dataset.Equal),
			filter("inspector", "inspector", dataset.Contains),
			filter("estado", "estado_plazo", dataset.Contains),
			filter("hallazgo", "hallazgo", dataset.Contains),
			filter("origen", "origen", dataset.Equal),
			filter("comuna", "comuna", dataset.Equal),
			filter("fecha_desde", "fecha_ingreso", dataset.DateFrom),
			filter("fecha_hasta", "fecha_ingreso", dataset.DateTo),
		},
		DefaultSort:  "fecha_ingreso",
		DefaultOrder: "desc",

		Export: columns(map[string]int{
			"nombre":    25,
			"direccion": 35,
			"comuna":    15,
			"inspector": 20,
			"hallazgo":  25,
		},
			"id", "ID",
			"origen", "Origen",
			"orden", "Orden",
			"cliente", "Cliente",
			"nombre", "Nombre",
			"direccion", "Dirección",
			"comuna", "Comuna",
			"sector", "Sector",
			"medidor", "Medidor",
			"fecha_ingreso", "Fecha ingreso",
			"fecha_inspeccion", "Fecha inspección",
			"inspector", "Inspector",
			"hallazgo", "Hallazgo",
			"estado_plazo", "Estado",
			"dias_respuesta", "Días respuesta",
		),

		Report: stats.Report{
			Counts: []stats.Count{
				count("inspeccionadas", present("fecha_inspeccion")),
				count("pendientes", empty("fecha_inspeccion")),
				count("en_plazo", contains("estado_plazo", "En el Plazo")),
				count("fuera_plazo", contains("estado_plazo", "Fuera")),
			},
			Rates: []stats.Rate{
				{Name: "inspeccion", Of: "inspeccionadas"},
				{Name: "cumplimiento_plazo", Of: "en_plazo"},
				{Name: "pendientes", Of: "pendientes"},
			},
			Numbers: []stats.Number{
				{Name: "dias_promedio", Field: "dias_respuesta", Op: stats.Mean, Decimals: 1},
				{Name: "dias_min", Field: "dias_respuesta", Op: stats.Min},
				{Name: "dias_max", Field: "dias_respuesta", Op: stats.Max},
			},
			Breakdowns: []stats.Breakdown{
				{Name: "hallazgos", Field: "hallazgo"},
				{Name: "estados_generales", Field: "estado_general"},
				{Name: "inspectores", Field: "inspector", Top: 10, Rate: "en_plazo"},
				{Name: "sectores", Field: "sector"},
				{Name: "origenes", Field: "origen"},
				{Name: "canales", Field: "canal_entrada"},
				{Name: "submotivos", Field: "submotivo", Top: 10},
				{Name: "gestiones", Field: "gestion"},
			},
			Evolution: &stats.Evolution{
				Field:  "fecha_ingreso",
				By:     stats.Daily,
				Window: 30,
				Counts: []string{"inspeccionadas", "en_plazo"},
			},
			Comparisons: []stats.Comparison{
				{Name: "inspeccion", Rate: "inspeccion", Field: "fecha_ingreso", Mode: stats.Halves},
				{Name: "cumplimiento_plazo", Rate: "cumplimiento_plazo", Field: "fecha_ingreso", Mode: stats.Halves},
			},
		},

		Insights: []insight.Rule{
			warning("rates.cumplimiento_plazo", insight.Below, "meta_cumplimiento_plazo", "Cumplimiento bajo meta",
				"Solo {value}% de las órdenes están en plazo (meta: {threshold}%)"),
			warning("rates.pendientes", insight.Above, "pendientes_altos", "Alta cantidad de pendientes",
				"{value}% de las órdenes aún no han sido inspeccionadas"),
			info("breakdowns.hallazgos", insight.Above, "hallazgo_frecuente", "Hallazgo frecuente: {category}",
				"{count} casos con este hallazgo"),
			warning("numbers.dias_promedio", insight.Above, "respuesta_lenta", "Tiempo de respuesta alto",
				"El promedio de días de respuesta es {value} días"),
			between(success("numbers.dias_promedio", "", "respuesta_rapida", "Buen tiempo de respuesta",
				"Promedio de {value} días de respuesta"), "sin_demora"),
		},
		Thresholds: map[string]float64{
			"meta_cumplimiento_plazo": 90,
			"pendientes_altos":        50,
			"hallazgo_frecuente":      20,
			"respuesta_lenta":         5,
			"respuesta_rapida":        3,
			"sin_demora":              0,
		},
	}
}
