package config

import (
	"errors"
	"testing"

	"time-to-shop/internal/pipeline"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.FeatureTable != "features" {
		t.Errorf("expected default feature table %q, got %q", "features", cfg.FeatureTable)
	}
	if cfg.ScoreTable != "purchase_scores" {
		t.Errorf("expected default score table %q, got %q", "purchase_scores", cfg.ScoreTable)
	}
	if cfg.ModelPath != "model.json" {
		t.Errorf("expected default model path %q, got %q", "model.json", cfg.ModelPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TTS_CLICKHOUSE_DSN", "clickhouse://localhost:9000/mart")
	t.Setenv("TTS_MODEL_PATH", "/models/tts.json")
	t.Setenv("TTS_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.ClickHouseDSN != "clickhouse://localhost:9000/mart" {
		t.Errorf("unexpected clickhouse dsn %q", cfg.ClickHouseDSN)
	}
	if cfg.ModelPath != "/models/tts.json" {
		t.Errorf("unexpected model path %q", cfg.ModelPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestValidate_MissingSourceDSN(t *testing.T) {
	cfg := &Config{ModelPath: "model.json", FeatureTable: "features"}

	err := cfg.Validate(Requirements{NeedSource: true})

	var cfgErr *pipeline.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Option != "TTS_CLICKHOUSE_DSN" {
		t.Errorf("expected error to name TTS_CLICKHOUSE_DSN, got %q", cfgErr.Option)
	}
}

func TestValidate_MissingSinkDSN(t *testing.T) {
	cfg := &Config{ModelPath: "model.json"}

	err := cfg.Validate(Requirements{NeedWarehouseSink: true})

	var cfgErr *pipeline.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestValidate_FixtureRunNeedsOnlyModel(t *testing.T) {
	cfg := &Config{ModelPath: "model.json"}

	if err := cfg.Validate(Requirements{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_MissingModelPath(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate(Requirements{})

	var cfgErr *pipeline.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
