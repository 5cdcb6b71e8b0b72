package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ALERT_COOLDOWN", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.GraphAPIBaseURL != "https://graph.facebook.com/v21.0" {
		t.Fatalf("expected default graph base url, got %s", cfg.GraphAPIBaseURL)
	}
	if cfg.AgentInboxAppID != 263902037430900 {
		t.Fatalf("expected Meta inbox app id default, got %d", cfg.AgentInboxAppID)
	}
	if cfg.AlertCooldown != 30*time.Minute {
		t.Fatalf("expected default alert cooldown, got %s", cfg.AlertCooldown)
	}
	if cfg.OutboundTimeout != 10*time.Second {
		t.Fatalf("expected default outbound timeout, got %s", cfg.OutboundTimeout)
	}
	if cfg.BankRateDefault != 8.0 || cfg.PagibigRateDefault != 9.0 {
		t.Fatalf("expected default financing rates, got %v / %v", cfg.BankRateDefault, cfg.PagibigRateDefault)
	}
	if cfg.BankDPTermMonths != 12 || cfg.PagibigDPTermMonths != 16 {
		t.Fatalf("expected default DP terms, got %d / %d", cfg.BankDPTermMonths, cfg.PagibigDPTermMonths)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("FB_PAGE_ACCESS_TOKEN", "page-token")
	t.Setenv("FB_APP_SECRET", "app-secret")
	t.Setenv("ALERT_COOLDOWN", "45m")
	t.Setenv("BANK_RATE_DEFAULT", "7.5")
	t.Setenv("PAGIBIG_DP_TERM_MONTHS", "18")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.FBPageAccessToken != "page-token" || cfg.FBAppSecret != "app-secret" {
		t.Fatalf("expected facebook credentials override")
	}
	if cfg.AlertCooldown != 45*time.Minute {
		t.Fatalf("expected cooldown override, got %s", cfg.AlertCooldown)
	}
	if cfg.BankRateDefault != 7.5 {
		t.Fatalf("expected bank rate override, got %v", cfg.BankRateDefault)
	}
	if cfg.PagibigDPTermMonths != 18 {
		t.Fatalf("expected pagibig term override, got %d", cfg.PagibigDPTermMonths)
	}
}
