package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
gateway:
  base_url: https://api.humblefax.com
  access_key: ak
  secret_key: sk
  to_number: "15551234567"
classify:
  categories:
    - Lab Results
    - Referrals
  ai:
    api_key: test-key
routing:
  default_destination: office@example.com
  mail:
    host: smtp.example.com
    from: faxes@example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Poll.Interval != 60*time.Second {
		t.Errorf("Expected default poll interval 60s, got %v", cfg.Poll.Interval)
	}
	if cfg.Poll.DownloadAttempts != 3 {
		t.Errorf("Expected default download attempts 3, got %d", cfg.Poll.DownloadAttempts)
	}
	if cfg.Classify.DefaultCategory != "Uncategorized" {
		t.Errorf("Expected default category Uncategorized, got %s", cfg.Classify.DefaultCategory)
	}
	if cfg.Routing.MaxAttempts != 3 {
		t.Errorf("Expected default routing max attempts 3, got %d", cfg.Routing.MaxAttempts)
	}
	if cfg.Gateway.Lookback != 2*cfg.Poll.Interval {
		t.Errorf("Expected lookback of two poll intervals, got %v", cfg.Gateway.Lookback)
	}
	if cfg.Cleanup.TmpDir != "tmp" {
		t.Errorf("Expected default tmp dir, got %s", cfg.Cleanup.TmpDir)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_AI_KEY", "sk-ant-test")
	defer os.Unsetenv("TEST_AI_KEY")

	content := strings.Replace(minimalConfig, "api_key: test-key", "api_key: ${TEST_AI_KEY}", 1)
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Classify.AI.APIKey != "sk-ant-test" {
		t.Errorf("Expected AI key from env, got %s", cfg.Classify.AI.APIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	content := strings.Replace(minimalConfig, "  access_key: ak\n", "", 1)
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Expected error for missing gateway access key")
	}
	if !strings.Contains(err.Error(), "gateway.access_key") {
		t.Errorf("Expected error to name gateway.access_key, got %v", err)
	}
}

func TestLoad_PrivacyModeRequiresRedaction(t *testing.T) {
	content := strings.Replace(minimalConfig, "classify:\n", "classify:\n  privacy_mode: true\n", 1)
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Expected error when privacy_mode set without redaction endpoint")
	}
}

func TestLoad_KeywordRuleValidation(t *testing.T) {
	// rule missing its category
	content := strings.Replace(minimalConfig, "  ai:", "  keyword_rules:\n    - keyword: Dupixent\n  ai:", 1)
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Expected error for keyword rule without category")
	}
}
