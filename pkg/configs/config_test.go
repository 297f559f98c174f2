package configs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/pdfvault/pkg/configs"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	return path
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	if err := configs.InitConfig(t.TempDir()); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg := configs.GetConfig()

	if cfg.Server.Port != configs.DefaultPort {
		t.Errorf("Expected port %d, got %d", configs.DefaultPort, cfg.Server.Port)
	}

	if cfg.DB.Name != "contracts.db" || cfg.DB.BusyTimeoutMS != 30000 || !cfg.DB.ForeignKeys {
		t.Errorf("Unexpected db defaults %+v", cfg.DB)
	}

	if cfg.Upload.Dir != "uploads" || cfg.Upload.GetMaxSize() != 100<<20 {
		t.Errorf("Unexpected upload defaults %+v", cfg.Upload)
	}

	if cfg.MQ.Type != configs.MQTypeGoChannel {
		t.Errorf("Expected gochannel mq by default, got %s", cfg.MQ.Type)
	}

	if cfg.Jobs.SchemaCheckInterval != configs.DefaultSchemaCheckInterval {
		t.Errorf("Expected default schema check interval, got %s", cfg.Jobs.SchemaCheckInterval)
	}

	if !filepath.IsAbs(cfg.DB.GetPath()) || !strings.HasPrefix(cfg.DB.GetDSN(), "file:") {
		t.Errorf("Unexpected db path %s / dsn %s", cfg.DB.GetPath(), cfg.DB.GetDSN())
	}
}

func TestYAMLFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `server:
  port: 9000
upload:
  dir: /srv/pdf
  max_size_mb: 5
jobs:
  schema_check_interval: 30s
`)

	t.Setenv("PDFVAULT_UPLOAD_DIR", "/srv/override")

	if err := configs.InitConfig(path); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg := configs.GetConfig()

	if cfg.Server.Port != 9000 || cfg.Upload.GetMaxSize() != 5<<20 {
		t.Errorf("File values not applied: %+v %+v", cfg.Server, cfg.Upload)
	}

	if cfg.Upload.Dir != "/srv/override" {
		t.Errorf("Expected env override, got %s", cfg.Upload.Dir)
	}

	if cfg.Jobs.SchemaCheckInterval != 30*time.Second {
		t.Errorf("Expected 30s interval, got %s", cfg.Jobs.SchemaCheckInterval)
	}

	if configs.GetViper().ConfigFileUsed() != path {
		t.Errorf("Expected config file %s, got %s", path, configs.GetViper().ConfigFileUsed())
	}
}

func TestDotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PDFVAULT_DB_NAME=from-dotenv.db\n")

	t.Cleanup(func() { _ = os.Unsetenv("PDFVAULT_DB_NAME") })

	if err := configs.InitConfig(dir); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if got := configs.GetConfig().DB.Name; got != "from-dotenv.db" {
		t.Errorf("Expected db name from .env, got %s", got)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	tests := map[string]string{
		"unsupported db": "db:\n  type: mysql\n",
		"bad mq type":    "mq:\n  type: kafka\n",
		"port range":     "server:\n  port: 70000\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", content)

			if err := configs.InitConfig(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
