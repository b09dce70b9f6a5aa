package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Analysis.RSIPeriod != 14 {
		t.Errorf("default RSI period = %d, want 14", cfg.Analysis.RSIPeriod)
	}
	if len(cfg.Analysis.MAPeriods) != 3 || cfg.Analysis.MAPeriods[2] != 200 {
		t.Errorf("default MA periods = %v, want [20 50 200]", cfg.Analysis.MAPeriods)
	}
	if cfg.Analysis.VolumeLookback != 30 {
		t.Errorf("default volume lookback = %d, want 30", cfg.Analysis.VolumeLookback)
	}
	if cfg.AI.MaxRetries != 2 {
		t.Errorf("default AI max retries = %d, want 2", cfg.AI.MaxRetries)
	}
	if cfg.AI.CacheTTLMinutes != 60 {
		t.Errorf("default AI cache TTL = %d, want 60", cfg.AI.CacheTTLMinutes)
	}
	if cfg.API.Port != 8000 {
		t.Errorf("default API port = %d, want 8000", cfg.API.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
api:
  port: 9100
analysis:
  rsi_period: 21
llm:
  model: gemini-1.5-flash
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.API.Port != 9100 {
		t.Errorf("API port = %d, want 9100", cfg.API.Port)
	}
	if cfg.Analysis.RSIPeriod != 21 {
		t.Errorf("RSI period = %d, want 21", cfg.Analysis.RSIPeriod)
	}
	if cfg.LLM.Model != "gemini-1.5-flash" {
		t.Errorf("LLM model = %q, want gemini-1.5-flash", cfg.LLM.Model)
	}
	// Untouched values keep defaults.
	if cfg.Analysis.VolumeLookback != 30 {
		t.Errorf("volume lookback = %d, want default 30", cfg.Analysis.VolumeLookback)
	}
}

func TestGeminiKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")
	cfg := Default()
	overrideFromEnv(cfg)
	if cfg.LLM.GeminiKey != "test-key-123" {
		t.Errorf("GeminiKey = %q, want test-key-123", cfg.LLM.GeminiKey)
	}
}

func TestKnownTicker(t *testing.T) {
	tests := []struct {
		ticker    string
		assetType string
		want      bool
	}{
		{"AAPL", "stocks", true},
		{"aapl", "stocks", true},
		{"AAPL", "crypto", false},
		{"BTC-USD", "crypto", true},
		{"^GSPC", "", true},
		{"ZZZZ", "", false},
	}
	for _, tt := range tests {
		if got := KnownTicker(tt.ticker, tt.assetType); got != tt.want {
			t.Errorf("KnownTicker(%q, %q) = %v, want %v", tt.ticker, tt.assetType, got, tt.want)
		}
	}
}

func TestSubredditsFor(t *testing.T) {
	if subs := SubredditsFor("crypto"); len(subs) == 0 || subs[0] != "CryptoCurrency" {
		t.Errorf("SubredditsFor(crypto) = %v", subs)
	}
	// Unknown types fall back to the stock subreddits.
	if subs := SubredditsFor("bonds"); len(subs) == 0 || subs[0] != "wallstreetbets" {
		t.Errorf("SubredditsFor(bonds) = %v", subs)
	}
}
