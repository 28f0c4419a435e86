package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/insight"
	"reportcache/internal/stats"
)

const (
	monofasico = "MONOFASICO"
	trifasico  = "TRIFASICO"
)

// calidadHeaders is shared by the executed and requested inspection files;
// both come out of the same field system.
func calidadHeaders() map[string]string {
	return headers(
		"NUMERO DE INCIDENCIA", "incidencia",
		"ASIGNADO A", "inspector",
		"INSPECTOR", "inspector",
		"SERVICIO", "servicio",
		"TIPO DE SERVICIO", "tipo_servicio",
		"NUMERO DE CLIENTE", "cliente",
		"NOMBRE DE CLIENTE", "nombre_cliente",
		"CALLE", "direccion",
		"COMUNA", "comuna",
		"MEDIDOR", "medidor",
		"N. MEDIDOR", "medidor",
		"TARIFA (1)", "tarifa",
		"ESTADO", "estado_suministro",
		"EMPRESA", "contratista",
		"TIPO RESULTADO", "tipo_resultado",
		"ESTADO PROPIEDAD", "estado_propiedad",
		"NORMALIZAR", "requiere_normalizacion",
		"VOLTS", "voltaje",
		"VOLTAJE", "voltaje",
		"AMP", "amperaje",
		"E %", "error_porcentaje",
		"% ERROR", "error_porcentaje",
		"ACOMETIDA", "estado_acometida",
		"CAJA", "estado_caja",
		"TAPA", "estado_tapa",
		"PERNO NORMALIZADO", "perno_normalizado",
		"GIRO (1)", "giro",
		"MODELO EN TERRENO CORRESPONDE A SISTEMA", "modelo_corresponde",
		"MEDIDOR EN TERRENO CORRESPONDE A SISTEMA", "medidor_corresponde",
		"FECHA", "fecha_inspeccion",
		"FECHA DE ACTUALIZACIÓN", "fecha_inspeccion",
		"FP MEDIDO", "factor_potencia",
	)
}

func calidadFields() []dataset.Field {
	return fields(
		of(dataset.Code, "incidencia", "cliente", "medidor"),
		of(dataset.Text, "servicio", "tipo_servicio", "nombre_cliente", "direccion", "tarifa",
			"requiere_normalizacion", "estado_acometida", "estado_caja", "estado_tapa",
			"perno_normalizado", "modelo_corresponde", "medidor_corresponde"),
		of(dataset.Upper, "inspector", "comuna", "estado_suministro", "contratista",
			"tipo_resultado", "estado_propiedad", "giro"),
		of(dataset.Date, "fecha_inspeccion"),
		of(dataset.Number, "voltaje", "amperaje", "error_porcentaje", "factor_potencia"),
	)
}

// installation classifies a fitting condition as NORMAL or ANORMAL. Blank
// values stay null.
func installation(field, into string) dataset.Classifier {
	return dataset.Classifier{
		Field: field,
		Into:  into,
		Rules: []dataset.Rule{
			rule("NORMAL", containsUnless("", "NORMAL", "ANORMAL")),
			rule("ANORMAL", present("")),
		},
	}
}

// Calidad describes the executed loss-control quality inspections, single
// and three phase.
func Calidad() *dataset.Spec {
	mono := equals("tipo_sistema", monofasico)
	tri := equals("tipo_sistema", trifasico)

	return &dataset.Spec{
		ID:    "calidad",
		Title: "Calidad de inspecciones",
		Sources: []dataset.Source{
			{File: "informe_calidad_mono_BASE.csv", Origin: monofasico},
			{File: "informe_calidad_tri_BASE.csv", Origin: trifasico},
		},
		OriginField: "tipo_sistema",
		Headers:     calidadHeaders(),
		Fields:      calidadFields(),
		PeriodFrom:  "fecha_inspeccion",
		Classifiers: []dataset.Classifier{
			installation("estado_acometida", "acometida"),
			installation("estado_caja", "caja"),
			installation("estado_tapa", "tapa"),
		},

		Search: []string{"cliente", "nombre_cliente", "direccion", "comuna", "medidor", "inspector"},
		Filters: append([]dataset.Filter{
			filter("tipo_sistema", "tipo_sistema", dataset.Equal),
			filter("tipo_resultado", "tipo_resultado", dataset.Contains),
			filter("comuna", "comuna", dataset.Equal),
			filter("contratista", "contratista", dataset.Equal),
			filter("inspector", "inspector", dataset.Contains),
		}, periodFilters()...),
		DefaultSort:  dataset.FieldID,
		DefaultOrder: "desc",

		Export: columns(map[string]int{
			"nombre_cliente": 25,
			"direccion":      35,
			"comuna":         15,
			"inspector":      20,
			"tipo_resultado": 20,
		},
			"id", "ID",
			"tipo_sistema", "Sistema",
			"incidencia", "Incidencia",
			"cliente", "Cliente",
			"nombre_cliente", "Nombre cliente",
			"direccion", "Dirección",
			"comuna", "Comuna",
			"medidor", "Medidor",
			"inspector", "Inspector",
			"contratista", "Contratista",
			"fecha_inspeccion", "Fecha inspección",
			"tipo_resultado", "Tipo resultado",
			"estado_propiedad", "Estado propiedad",
			"voltaje", "Voltaje",
			"amperaje", "Amperaje",
			"error_porcentaje", "Error %",
		),

		Report: stats.Report{
			Externals: []stats.External{
				{Name: "solicitadas", Dataset: "calidad_solicitudes"},
				{Name: "solicitadas_mono", Dataset: "calidad_solicitudes", When: &mono},
				{Name: "solicitadas_tri", Dataset: "calidad_solicitudes", When: &tri},
			},
			Counts: []stats.Count{
				count("ejecutadas", all()),
				count("ejecutadas_mono", mono),
				count("ejecutadas_tri", tri),
				count("normales", containsUnless("tipo_resultado", "NORMAL", "ANORMAL")),
				count("modelo_no_corresponde", equals("modelo_corresponde", "NO")),
				count("medidor_no_corresponde", equals("medidor_corresponde", "NO")),
				count("requiere_normalizacion", present("requiere_normalizacion")),
				count("perno_no_normalizado", equals("perno_normalizado", "NO")),
				count("acometida_normal", equals("acometida", "NORMAL")),
				count("acometida_anormal", equals("acometida", "ANORMAL")),
				count("caja_normal", equals("caja", "NORMAL")),
				count("caja_anormal", equals("caja", "ANORMAL")),
				count("tapa_normal", equals("tapa", "NORMAL")),
				count("tapa_anormal", equals("tapa", "ANORMAL")),
			},
			Rates: []stats.Rate{
				{Name: "ejecucion", Of: "ejecutadas", Over: []string{"solicitadas"}},
				{Name: "ejecucion_mono", Of: "ejecutadas_mono", Over: []string{"solicitadas_mono"}},
				{Name: "ejecucion_tri", Of: "ejecutadas_tri", Over: []string{"solicitadas_tri"}},
				{
					Name: "anomalias",
					Of:   "modelo_no_corresponde",
					Plus: []string{"medidor_no_corresponde", "requiere_normalizacion", "perno_no_normalizado"},
				},
				// monthly series count equipment mismatches only
				{Name: "anomalias_equipo", Of: "modelo_no_corresponde", Plus: []string{"medidor_no_corresponde"}},
				{Name: "normalidad", Of: "normales"},
			},
			Numbers: []stats.Number{
				{Name: "voltaje_promedio", Field: "voltaje", Op: stats.Mean, Decimals: 1},
				{Name: "amperaje_promedio", Field: "amperaje", Op: stats.Mean, Decimals: 2},
				{Name: "error_promedio", Field: "error_porcentaje", Op: stats.Mean, Decimals: 2},
				{Name: "error_max", Field: "error_porcentaje", Op: stats.Max, Decimals: 2},
				{Name: "factor_potencia_promedio", Field: "factor_potencia", Op: stats.Mean, Decimals: 2},
			},
			Breakdowns: []stats.Breakdown{
				{Name: "resultados", Field: "tipo_resultado"},
				{Name: "estados_propiedad", Field: "estado_propiedad"},
				{Name: "estados_suministro", Field: "estado_suministro"},
				{Name: "comunas", Field: "comuna"},
				{Name: "inspectores", Field: "inspector", Rate: "normales"},
				{Name: "contratistas", Field: "contratista", Rate: "normales"},
				{Name: "giros", Field: "giro", Top: 10},
				{Name: "sistemas", Field: "tipo_sistema"},
			},
			Evolution: &stats.Evolution{
				Field:  "fecha_inspeccion",
				By:     stats.Monthly,
				Window: 12,
				Counts: []string{"normales", "ejecutadas_mono", "ejecutadas_tri"},
				Rates:  []string{"normalidad", "anomalias_equipo"},
			},
			Comparisons: []stats.Comparison{
				{Name: "normalidad", Rate: "normalidad", Field: "fecha_inspeccion", Mode: stats.Periods},
			},
		},

		Insights: []insight.Rule{
			warning("rates.ejecucion", insight.Below, "ejecucion_baja", "Baja tasa de ejecución",
				"Solo se ha ejecutado el {value}% de las inspecciones solicitadas"),
			success("rates.ejecucion", insight.AtLeast, "ejecucion_buena", "Buena tasa de ejecución",
				"Se ha ejecutado el {value}% de las inspecciones"),
			warning("rates.anomalias", insight.Above, "anomalias_altas", "Alto índice de anomalías",
				"{value}% de las inspecciones presentan anomalías en equipos"),
			success("rates.normalidad", insight.AtLeast, "normalidad_alta", "Alta tasa de normalidad",
				"{value}% de las inspecciones resultaron normales"),
			info("rates.normalidad", insight.Below, "normalidad_moderada", "Tasa de normalidad moderada",
				"{value}% de las inspecciones resultaron normales"),
			warning("numbers.error_max", insight.Above, "error_maximo", "Error de medición elevado",
				"Se detectó un error máximo de {value}% en medidores"),
		},
		Thresholds: map[string]float64{
			"ejecucion_baja":      50,
			"ejecucion_buena":     80,
			"anomalias_altas":     10,
			"normalidad_alta":     90,
			"normalidad_moderada": 70,
			"error_maximo":        5,
		},
	}
}

// CalidadSolicitudes describes the requested inspection orders. It only
// provides the population executed inspections are measured against.
func CalidadSolicitudes() *dataset.Spec {
	return &dataset.Spec{
		ID:    "calidad_solicitudes",
		Title: "Inspecciones de calidad solicitadas",
		Sources: []dataset.Source{
			{File: "informe_calidad_mono_INSPECCIONES.csv", Origin: monofasico},
			{File: "informe_calidad_tri_INSPECCIONES.csv", Origin: trifasico},
		},
		OriginField: "tipo_sistema",
		Headers:     calidadHeaders(),
		Fields:      calidadFields(),
		PeriodFrom:  "fecha_inspeccion",

		Search: []string{"cliente", "nombre_cliente", "direccion", "comuna", "medidor"},
		Filters: []dataset.Filter{
			filter("tipo_sistema", "tipo_sistema", dataset.Equal),
			filter("comuna", "comuna", dataset.Equal),
		},
		DefaultSort:  dataset.FieldID,
		DefaultOrder: "asc",

		Export: columns(nil,
			"id", "ID",
			"tipo_sistema", "Sistema",
			"incidencia", "Incidencia",
			"cliente", "Cliente",
			"comuna", "Comuna",
			"medidor", "Medidor",
		),

		Report: stats.Report{
			Counts: []stats.Count{
				count("mono", equals("tipo_sistema", monofasico)),
				count("tri", equals("tipo_sistema", trifasico)),
			},
			Breakdowns: []stats.Breakdown{
				{Name: "comunas", Field: "comuna", Top: 15},
				{Name: "sistemas", Field: "tipo_sistema"},
			},
		},
		Thresholds: map[string]float64{},
	}
}
