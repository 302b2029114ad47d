package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Poll.Interval == 0 {
		cfg.Poll.Interval = 60 * time.Second
	}
	if cfg.Poll.Workers == 0 {
		cfg.Poll.Workers = 4
	}
	if cfg.Poll.DownloadAttempts == 0 {
		cfg.Poll.DownloadAttempts = 3
	}
	if cfg.Poll.DownloadBackoff == 0 {
		cfg.Poll.DownloadBackoff = 2 * time.Second
	}
	if cfg.Gateway.Lookback == 0 {
		cfg.Gateway.Lookback = 2 * cfg.Poll.Interval
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 30 * time.Second
	}
	if cfg.Classify.DefaultCategory == "" {
		cfg.Classify.DefaultCategory = "Uncategorized"
	}
	if cfg.Classify.OCR.Command == "" {
		cfg.Classify.OCR.Command = "tesseract"
	}
	if cfg.Classify.OCR.Language == "" {
		cfg.Classify.OCR.Language = "eng"
	}
	if cfg.Classify.OCR.Timeout == 0 {
		cfg.Classify.OCR.Timeout = 60 * time.Second
	}
	if cfg.Classify.Redaction.Timeout == 0 {
		cfg.Classify.Redaction.Timeout = 30 * time.Second
	}
	if cfg.Classify.AI.Model == "" {
		cfg.Classify.AI.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Classify.AI.MaxTokens == 0 {
		cfg.Classify.AI.MaxTokens = 1024
	}
	if cfg.Classify.AI.Timeout == 0 {
		cfg.Classify.AI.Timeout = 45 * time.Second
	}
	if cfg.Routing.MaxAttempts == 0 {
		cfg.Routing.MaxAttempts = 3
	}
	if cfg.Routing.InitialBackoff == 0 {
		cfg.Routing.InitialBackoff = 5 * time.Second
	}
	if cfg.Routing.MaxBackoff == 0 {
		cfg.Routing.MaxBackoff = 60 * time.Second
	}
	if cfg.Routing.Mail.Port == 0 {
		cfg.Routing.Mail.Port = 587
	}
	if cfg.Routing.Mail.Timeout == 0 {
		cfg.Routing.Mail.Timeout = 30 * time.Second
	}
	if cfg.Cleanup.TmpDir == "" {
		cfg.Cleanup.TmpDir = "tmp"
	}
	if cfg.Cleanup.MaxAge == 0 {
		cfg.Cleanup.MaxAge = time.Hour
	}
	if cfg.Cleanup.SweepInterval == 0 {
		cfg.Cleanup.SweepInterval = 30 * time.Minute
	}
	if cfg.Cleanup.PruneInterval == 0 {
		cfg.Cleanup.PruneInterval = time.Hour
	}
}

// Validate checks the settings the pipeline cannot run without. It fails
// fast at startup rather than at the first poll cycle.
func (cfg *AppConfig) Validate() error {
	var missing []string

	if cfg.Gateway.BaseURL == "" {
		missing = append(missing, "gateway.base_url")
	}
	if cfg.Gateway.AccessKey == "" {
		missing = append(missing, "gateway.access_key")
	}
	if cfg.Gateway.SecretKey == "" {
		missing = append(missing, "gateway.secret_key")
	}
	if len(cfg.Classify.Categories) == 0 {
		missing = append(missing, "classify.categories")
	}
	if cfg.Classify.AI.APIKey == "" {
		missing = append(missing, "classify.ai.api_key")
	}
	if cfg.Routing.DefaultDestination == "" {
		missing = append(missing, "routing.default_destination")
	}
	if cfg.Routing.Mail.Host == "" {
		missing = append(missing, "routing.mail.host")
	}
	if cfg.Routing.Mail.From == "" {
		missing = append(missing, "routing.mail.from")
	}
	if cfg.Classify.PrivacyMode && cfg.Classify.Redaction.AnonymizerURL == "" {
		missing = append(missing, "classify.redaction.anonymizer_url (required when privacy_mode is on)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	for _, rule := range cfg.Classify.KeywordRules {
		if rule.Keyword == "" || rule.Category == "" {
			return fmt.Errorf("keyword rules must set both keyword and category")
		}
	}

	return nil
}
