package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("SIMULATION_MODE", "true")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if !cfg.Simulation {
		t.Fatalf("expected simulation default")
	}
	if cfg.OpenSeconds != 8 || cfg.MaxAttempts != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RetryBaseDelay != 500*time.Millisecond || cfg.RetryMaxDelay != 8*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if cfg.LedgerBackend != LedgerMemory {
		t.Fatalf("unexpected ledger default: %s", cfg.LedgerBackend)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "")
	t.Setenv("SIMULATION_MODE", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without WEBHOOK_SECRET")
	}
}

func TestLoadLiveModeRequiresVendorCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SIMULATION_MODE", "false")
	t.Setenv("TT_LOCK_ID", "12345")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without TTLock credentials")
	}
	t.Setenv("TT_CLIENT_ID", "cid")
	t.Setenv("TT_CLIENT_SECRET", "cs")
	t.Setenv("TT_EMAIL", "a@b.c")
	t.Setenv("TT_PASSWORD", "pw")
	if _, err := Load(); err != nil {
		t.Fatalf("Load error with full credentials: %v", err)
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEDGER_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/fechadura")
	if _, err := Load(); err != nil {
		t.Fatalf("Load error with DSN: %v", err)
	}
}

func TestLoadRejectsUnknownBackendAndBadValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEDGER_BACKEND", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	t.Setenv("LEDGER_BACKEND", "memory")
	t.Setenv("MAX_ATTEMPTS", "zero")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-integer MAX_ATTEMPTS")
	}
	t.Setenv("MAX_ATTEMPTS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for MAX_ATTEMPTS=0")
	}
	t.Setenv("MAX_ATTEMPTS", "3")
	t.Setenv("RETRY_BASE_DELAY", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}
