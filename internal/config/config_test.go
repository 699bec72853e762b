package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_PROVIDER", "LLM_TIMEOUT_SECONDS", "LLM_RETRIES", "HISTORY_LIMIT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.LLM.Provider != ProviderArk {
		t.Fatalf("unexpected provider %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 90*time.Second || cfg.LLM.Retries != 3 {
		t.Fatalf("unexpected llm defaults: timeout=%s retries=%d", cfg.LLM.Timeout, cfg.LLM.Retries)
	}
	if cfg.Conversation.HistoryLimit != 10 || cfg.Conversation.PrimaryLanguage != "zh" {
		t.Fatalf("unexpected conversation defaults: %+v", cfg.Conversation)
	}
}

func TestLoadServerAddrForms(t *testing.T) {
	cases := map[string]string{"8080": ":8080", "127.0.0.1:9000": "127.0.0.1:9000"}
	for port, want := range cases {
		t.Setenv("PORT", port)
		cfg, err := loadServerConfig()
		if err != nil {
			t.Fatalf("loadServerConfig(%q) err: %v", port, err)
		}
		if cfg.Addr != want {
			t.Fatalf("loadServerConfig(%q) = %q, want %q", port, cfg.Addr, want)
		}
	}

	t.Setenv("PORT", "80 80")
	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for PORT with space")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLLMEnabledPerProvider(t *testing.T) {
	ark := LLMConfig{Provider: ProviderArk, Model: "ep-1", APIKey: "k"}
	if !ark.Enabled() {
		t.Fatal("expected ark config enabled")
	}
	if (LLMConfig{Provider: ProviderArk, APIKey: "k"}).Enabled() {
		t.Fatal("ark without model must be disabled")
	}
	gemini := LLMConfig{Provider: ProviderGemini, GeminiAPIKey: "g", GeminiModel: "gemini-2.5-flash"}
	if !gemini.Enabled() {
		t.Fatal("expected gemini config enabled")
	}
}

func TestInvalidIntEnv(t *testing.T) {
	t.Setenv("LLM_RETRIES", "many")
	if _, err := loadLLMConfig(); err == nil {
		t.Fatal("expected error for non-numeric LLM_RETRIES")
	}
}
