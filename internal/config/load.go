package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDataDir        = "REPORTCACHE_DATA_DIR"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
)

// Load reads path on top of Default. The format follows the extension:
// ".json" is JSON, anything else YAML. An empty path yields Default. Unknown
// keys are rejected in both formats.
func Load(path string) (App, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ApplyEnv overlays the environment onto cfg. lookup is os.LookupEnv in
// production.
func (a *App) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		a.DataDir = v
	}
	if v, ok := lookup(EnvMetricsBackend); ok && v != "" {
		a.Metrics.Backend = v
	}
	if v, ok := lookup(EnvPushgatewayURL); ok && v != "" {
		a.Metrics.PushgatewayURL = v
	}
}
