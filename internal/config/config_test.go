package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Host == "" {
		t.Error("expected Server.Host to be set")
	}
	if cfg.Server.Port == 0 {
		t.Error("expected Server.Port to be non-zero")
	}
	if cfg.Database.Name == "" {
		t.Error("expected Database.Name to be set")
	}
	if cfg.Database.MaxOpenConns == 0 {
		t.Error("expected MaxOpenConns to be set")
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		t.Error("expected ConnMaxLifetime to be set")
	}

	// 调度器默认值
	if !cfg.Scheduler.Enabled {
		t.Error("expected scheduler enabled by default")
	}
	if cfg.Scheduler.Interval != 5*time.Minute {
		t.Errorf("expected 5m interval, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.Assignment != "random" {
		t.Errorf("expected random assignment, got %q", cfg.Scheduler.Assignment)
	}

	if cfg.GenAI.Enabled {
		t.Error("expected genai disabled by default")
	}
	if cfg.GenAI.Timeout == 0 {
		t.Error("expected genai timeout to be set")
	}

	if cfg.Log.Level == "" || cfg.Log.Format == "" {
		t.Error("expected log defaults to be set")
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("scheduler.interval", "90s")
	viper.Set("scheduler.assignment", "least_busy")
	viper.Set("server.port", 9090)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scheduler.Interval != 90*time.Second {
		t.Errorf("expected 90s interval, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.Assignment != "least_busy" {
		t.Errorf("expected least_busy, got %q", cfg.Scheduler.Assignment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "maint",
		Password: "secret",
		Name:     "maintdesk",
	}

	dsn := cfg.DSN()
	for _, part := range []string{"host=db.internal", "port=5433", "user=maint", "dbname=maintdesk", "TimeZone=UTC"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("expected DSN to contain %q, got %q", part, dsn)
		}
	}
}
