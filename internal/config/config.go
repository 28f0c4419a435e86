// Package config defines the application configuration for reportcache and
// loads it from a YAML or JSON file plus environment overrides.
//
// Example (YAML):
//
//	data_dir: /srv/reportes/data
//	log_level: info
//	metrics:
//	  backend: pushgateway
//	  pushgateway_url: http://pushgateway:9091
//	export:
//	  kind: postgres
//	  dsn: postgresql://reports@db/reports
//	  table: public.export_nncc
//	  replace: true
//	thresholds:
//	  nncc:
//	    efectividad_meta: 96
//	windows:
//	  nncc: 6
package config

// Metrics backend names.
const (
	BackendNone        = "none"
	BackendPushgateway = "pushgateway"
	BackendDatadog     = "datadog"
)

// App is the top-level configuration object.
type App struct {
	// DataDir is the directory holding every dataset's source files.
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Export  Export  `json:"export" yaml:"export"`

	// Thresholds override insight thresholds per dataset and key.
	Thresholds map[string]map[string]float64 `json:"thresholds" yaml:"thresholds"`

	// Windows override the evolution window (number of periods) per dataset.
	Windows map[string]int `json:"windows" yaml:"windows"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog".
	Backend        string  `json:"backend" yaml:"backend"`
	PushgatewayURL string  `json:"pushgateway_url" yaml:"pushgateway_url"`
	Job            string  `json:"job" yaml:"job"`
	Datadog        Datadog `json:"datadog" yaml:"datadog"`
}

// Datadog configures the DogStatsD client.
type Datadog struct {
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Export configures the SQL sink used by the export command.
type Export struct {
	// Kind is a storage kind registered with the storage package
	// ("postgres", "mssql", "sqlite").
	Kind string `json:"kind" yaml:"kind"`

	// DSN is the driver connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table. Empty means "export_<dataset>".
	Table string `json:"table" yaml:"table"`

	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Replace empties the table before each export.
	Replace bool `json:"replace" yaml:"replace"`
}

// Default returns the configuration used when no file is given.
func Default() App {
	return App{
		DataDir:  "data",
		LogLevel: "info",
		Metrics:  Metrics{Backend: BackendNone, Job: "reportcache"},
		Export:   Export{BatchSize: 1000},
	}
}
