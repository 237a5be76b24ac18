package infra

import (
	"reflect"
	"testing"
)

func TestLoadConfigAllowedOrigins(t *testing.T) {
	t.Setenv("SIGN_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "https://studio.example, https://admin.example ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := []string{"https://studio.example", "https://admin.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SIGN_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil when unset", cfg.AllowedOrigins)
	}
	if cfg.Port != "8080" || cfg.DefaultProvider != "openai" {
		t.Errorf("defaults = port %s provider %s", cfg.Port, cfg.DefaultProvider)
	}
	if cfg.MaxStyleImages != 10 || cfg.MaxConcurrentTasks != 5 {
		t.Errorf("ceilings = %d/%d, want 10/5", cfg.MaxStyleImages, cfg.MaxConcurrentTasks)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("SIGN_SECRET", "")
	t.Setenv("OPENAI_API_KEY", "test-key")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() without SIGN_SECRET: expected error")
	}
}
