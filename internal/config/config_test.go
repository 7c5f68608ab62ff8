package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  driver: memory
rate:
  login_per_minute: 9
settings:
  cache_ttl: 90s
bootstrap:
  admin_email: root@example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Rate.LoginPerMinute != 9 {
		t.Fatalf("unexpected login per minute: %d", cfg.Rate.LoginPerMinute)
	}
	if cfg.Rate.LoginPerHour != 30 {
		t.Fatalf("login per hour default should stay 30, got %d", cfg.Rate.LoginPerHour)
	}
	if cfg.Settings.CacheTTL != 90*time.Second {
		t.Fatalf("unexpected settings cache ttl: %s", cfg.Settings.CacheTTL)
	}
	if cfg.Bootstrap.AdminEmail != "root@example.com" || cfg.Bootstrap.AdminName != "Portal Admin" {
		t.Fatalf("unexpected bootstrap config: %+v", cfg.Bootstrap)
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl: %s", cfg.Auth.JWTAccessTTL)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("unexpected defaults: addr=%s driver=%s", cfg.HTTP.Addr, cfg.Storage.Driver)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http:\n  addr: \":9000\"\n"), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("LOGIN_RATE_PER_HOUR", "12")
	t.Setenv("POSTGRES_MIGRATE_ON_START", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != ":7000" {
		t.Fatalf("unexpected addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("unexpected driver: %s", cfg.Storage.Driver)
	}
	if cfg.Rate.LoginPerHour != 12 {
		t.Fatalf("unexpected login per hour: %d", cfg.Rate.LoginPerHour)
	}
	if cfg.Postgres.MigrateOnStart {
		t.Fatalf("migrate on start should be disabled")
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "fifteen")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestProductionRequiresRealJWTSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected default secret to be rejected in production")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(""); err != nil {
		t.Fatalf("load with real secret: %v", err)
	}
}

func TestUnknownStorageDriverIsRejected(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"STORAGE_DRIVER",
		"POSTGRES_DSN",
		"POSTGRES_MIGRATE_ON_START",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"LOGIN_RATE_PER_MINUTE",
		"LOGIN_RATE_PER_HOUR",
		"SETTINGS_CACHE_TTL",
		"BOOTSTRAP_ADMIN_EMAIL",
		"BOOTSTRAP_ADMIN_PASSWORD",
		"BOOTSTRAP_ADMIN_NAME",
		"BOOTSTRAP_SEED_UPAZILAS",
	} {
		t.Setenv(key, "")
	}
}
