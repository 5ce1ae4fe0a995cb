package cli

import (
	"bytes"
	"strings"
	"testing"

	"facturas/internal/config"
	"facturas/internal/log"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, log.ComponentWorker, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"component":"worker"`) {
		t.Errorf("expected json component attribute, got: %s", out)
	}
	if logger.Component() != log.ComponentWorker {
		t.Errorf("Component() = %q, want %q", logger.Component(), log.ComponentWorker)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_STORE", "memory")
	t.Setenv("LIVE_SOURCE", "none")
	t.Setenv("AMQP_URL", "")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.DataStore != config.StoreMemory {
		t.Errorf("DataStore = %q, want memory", cfg.DataStore)
	}

	t.Setenv("LIVE_SOURCE", "carrier-pigeon")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error for unknown live source")
	}
}
