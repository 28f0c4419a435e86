package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/stats"
)

// NNCC describes the new-connection inspection report.
func NNCC() *dataset.Spec {
	return &dataset.Spec{
		ID:      "nncc",
		Title:   "Nuevas conexiones",
		Sources: []dataset.Source{{File: "2025-05 INFORME NNCC (2024-2029) DIC 2025.csv"}},

		Headers: headers(
			"VTA", "vta",
			"Cliente", "cliente",
			"Nombre cliente", "nombre_cliente",
			"Dirección", "direccion",
			"Comuna", "comuna",
			"TARIFA", "tarifa",
			"ZONA", "zona",
			"BASE", "base",
			"N° MEDIDOR", "n_medidor",
			"ESTADO EFECTIVIDAD OCA", "estado_efectividad",
			"RESULTADO FINAL DE INSPCCION", "resultado_inspeccion",
			"MULTA SI/NO", "multa",
			"OBSERVACIONES DE MULTA", "observaciones_multa",
			"FECHA INSPECCIÓN", "fecha_inspeccion",
			"Inspector3", "inspector",
			"ESTADO CONTRATISTA", "estado_contratista",
			"RESULTADO FINAL DE REVISIÓN DE NORMALIZACIÓN", "resultado_normalizacion",
			"CUMPLE NORMA CODIGO COLORES", "cumple_norma_cc",
			"CLIENTE CONFORME", "cliente_conforme",
			"ESTADO DEL EMPALME", "estado_empalme",
			"TIPO INSPECCIÓN", "tipo_inspeccion",
			"VOLTAJE", "voltaje",
		),
		Fields: fields(
			of(dataset.Code, "vta", "cliente", "n_medidor"),
			of(dataset.Text, "nombre_cliente", "direccion", "base", "observaciones_multa"),
			of(dataset.Upper, "comuna", "tarifa", "zona", "estado_efectividad",
				"resultado_inspeccion", "multa", "estado_contratista",
				"resultado_normalizacion", "cumple_norma_cc", "cliente_conforme",
				"estado_empalme", "tipo_inspeccion"),
			of(dataset.Title, "inspector"),
			of(dataset.Date, "fecha_inspeccion"),
			of(dataset.Number, "voltaje"),
		),
		PeriodFrom: "fecha_inspeccion",
		Classifiers: []dataset.Classifier{{
			Field:    "estado_empalme",
			Into:     "empalme",
			EmptyTag: "SIN INSPECCIONAR",
			Rules: []dataset.Rule{
				rule("SIN DATO", equals("", "#N/D", "S/N", "#N/A", "N/A")),
				rule("BUENO", equals("", "BUENO", "BUEN", "BIEN")),
				rule("MALO", equals("", "MALO", "MAL")),
				rule("REGULAR", equals("", "REGULAR")),
				rule("SIN DATO", numeric("")),
			},
		}},

		Search: []string{"cliente", "comuna", "inspector", "n_medidor", "direccion"},
		Filters: []dataset.Filter{
			filter("zona", "zona", dataset.Equal),
			filter("inspector", "inspector", dataset.Contains),
			filter("estado", "estado_efectividad", dataset.Contains),
			filter("comuna", "comuna", dataset.Equal),
			filter("base", "base", dataset.Exact),
			filter("fecha_desde", "fecha_inspeccion", dataset.DateFrom),
			filter("fecha_hasta", "fecha_inspeccion", dataset.DateTo),
		},
		DefaultSort:  "fecha_inspeccion",
		DefaultOrder: "desc",

		Export: columns(map[string]int{
			"cliente":            15,
			"nombre_cliente":     25,
			"direccion":          35,
			"comuna":             15,
			"zona":               12,
			"inspector":          20,
			"fecha_inspeccion":   14,
			"estado_efectividad": 18,
		},
			"id", "ID",
			"vta", "VTA",
			"cliente", "Cliente",
			"nombre_cliente", "Nombre cliente",
			"direccion", "Dirección",
			"comuna", "Comuna",
			"zona", "Zona",
			"base", "Base",
			"n_medidor", "N° Medidor",
			"inspector", "Inspector",
			"fecha_inspeccion", "Fecha inspección",
			"estado_efectividad", "Estado efectividad",
			"resultado_inspeccion", "Resultado inspección",
			"multa", "Multa",
			"cliente_conforme", "Cliente conforme",
			"cumple_norma_cc", "Cumple norma CC",
			"empalme", "Estado empalme",
		),

		Report: stats.Report{
			Counts: []stats.Count{
				count("efectivas", containsUnless("estado_efectividad", "EFECTIVA", "NO EFECTIVA")),
				count("no_efectivas", contains("estado_efectividad", "NO EFECTIVA")),
				count("bien_ejecutados", contains("resultado_inspeccion", "BIEN")),
				count("mal_ejecutados", contains("resultado_inspeccion", "MAL")),
				count("con_multa", equals("multa", "SI")),
				count("pendientes_normalizar", contains("resultado_normalizacion", "PENDIENTE")),
				count("conformes", containsUnless("cliente_conforme", "CONFORME", "DISCONFORME")),
				count("disconformes", contains("cliente_conforme", "DISCONFORME")),
				count("conformidad_sin_dato", equals("cliente_conforme", "S/N", "#N/D")),
				count("conformidad_sin_inspeccionar", empty("cliente_conforme")),
				count("cumple_cc", containsUnless("cumple_norma_cc", "CUMPLE", "NO CUMPLE")),
				count("no_cumple_cc", contains("cumple_norma_cc", "NO CUMPLE")),
				count("cumple_cc_sin_dato", equals("cumple_norma_cc", "S/N", "#N/D")),
				count("cumple_cc_sin_inspeccionar", empty("cumple_norma_cc")),
			},
			Rates: []stats.Rate{
				{Name: "efectividad", Of: "efectivas"},
				{Name: "bien_ejecutado", Of: "bien_ejecutados", Over: []string{"efectivas"}},
				{Name: "conformidad", Of: "conformes", Over: []string{"conformes", "disconformes"}},
				{Name: "cumple_cc", Of: "cumple_cc", Over: []string{"cumple_cc", "no_cumple_cc"}},
			},
			Breakdowns: []stats.Breakdown{
				{Name: "zonas", Field: "zona", Rate: "efectivas"},
				{Name: "inspectores", Field: "inspector", Top: 10, Rate: "efectivas"},
				{Name: "empalme", Field: "empalme"},
				{Name: "comunas", Field: "comuna", Top: 15},
			},
			Evolution: &stats.Evolution{
				Field:  "fecha_inspeccion",
				By:     stats.Monthly,
				Window: 12,
				Counts: []string{"efectivas", "bien_ejecutados", "conformes", "cumple_cc"},
				Rates:  []string{"efectividad", "bien_ejecutado", "conformidad", "cumple_cc"},
			},
			Comparisons: []stats.Comparison{
				{Name: "efectividad", Rate: "efectividad", Field: "fecha_inspeccion", Mode: stats.Periods},
				{Name: "bien_ejecutado", Rate: "bien_ejecutado", Field: "fecha_inspeccion", Mode: stats.Periods},
				{Name: "conformidad", Rate: "conformidad", Field: "fecha_inspeccion", Mode: stats.Periods},
				{Name: "cumple_cc", Rate: "cumple_cc", Field: "fecha_inspeccion", Mode: stats.Periods},
			},
			Ranking: &stats.Ranking{
				Field: "comuna",
				Weights: []stats.Weight{
					{Count: "mal_ejecutados", Weight: 1},
					{Count: "disconformes", Weight: 1},
					{Count: "no_cumple_cc", Weight: 1},
				},
				MinSample: 5,
				Top:       5,
			},
		},

		Insights: []insight.Rule{
			warning("rates.efectividad", insight.Below, "meta_efectividad", "Efectividad bajo meta",
				"La efectividad actual ({value}%) está por debajo de la meta del {threshold}%"),
			success("rates.efectividad", insight.AtLeast, "efectividad_excelente", "Excelente efectividad",
				"La efectividad actual ({value}%) supera ampliamente la meta"),
			success("comparisons.efectividad", insight.AtLeast, "tendencia_alza", "Tendencia positiva",
				"La efectividad mejoró {value}% respecto al mes anterior"),
			warning("comparisons.efectividad", insight.AtMost, "tendencia_baja", "Tendencia negativa",
				"La efectividad cayó {abs}% respecto al mes anterior"),
			warning("ratios.conformidad", insight.Below, "meta_conformidad", "Atención en satisfacción",
				"Solo {value}% de clientes están conformes"),
			info("ranking", insight.Above, "incidencias_comuna", "Comuna con más incidencias",
				"{category} concentra {value} incidencias en {count} inspecciones"),
			unlessFiltered(info("spread.zonas", insight.Above, "desigualdad_zonas", "Distribución desigual",
				"Zona {category} tiene {count} inspecciones, {value} veces la zona con menos"), "zona"),
		},
		Thresholds: map[string]float64{
			"meta_efectividad":      95,
			"efectividad_excelente": 98,
			"tendencia_alza":        3,
			"tendencia_baja":        -3,
			"meta_conformidad":      90,
			"incidencias_comuna":    10,
			"desigualdad_zonas":     2,
		},
	}
}
