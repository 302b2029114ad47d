package config

import (
	"time"
)

// AppConfig represents the top-level configuration, resolved once at startup
// into immutable structures the pipeline reads.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Poll     PollConfig     `yaml:"poll"`
	Classify ClassifyConfig `yaml:"classify"`
	Routing  RoutingConfig  `yaml:"routing"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GatewayConfig holds fax gateway API settings.
type GatewayConfig struct {
	BaseURL   string        `yaml:"base_url"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	ToNumber  string        `yaml:"to_number"`
	Lookback  time.Duration `yaml:"lookback"` // listing window reaching back from now
	Timeout   time.Duration `yaml:"timeout"`
}

// PollConfig holds the discovery loop settings.
type PollConfig struct {
	Interval         time.Duration `yaml:"interval"`
	Workers          int           `yaml:"workers"`
	DownloadAttempts int           `yaml:"download_attempts"`
	DownloadBackoff  time.Duration `yaml:"download_backoff"`
}

// KeywordRule maps a keyword or phrase to a category, in configured order.
type KeywordRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// ClassifyConfig holds the decision-chain settings.
type ClassifyConfig struct {
	Categories      []string          `yaml:"categories"`
	DefaultCategory string            `yaml:"default_category"`
	SenderMappings  map[string]string `yaml:"sender_mappings"`
	KeywordRules    []KeywordRule     `yaml:"keyword_rules"`
	PrivacyMode     bool              `yaml:"privacy_mode"`
	OCR             OCRConfig         `yaml:"ocr"`
	Redaction       RedactionConfig   `yaml:"redaction"`
	AI              AIConfig          `yaml:"ai"`
}

// OCRConfig holds text-extraction settings.
type OCRConfig struct {
	Command  string        `yaml:"command"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
	// EmptyTextToDefault resolves faxes whose OCR output is empty straight to
	// the default category instead of letting them reach the AI stage.
	EmptyTextToDefault bool `yaml:"empty_text_to_default"`
}

// RedactionConfig holds PHI redaction service settings.
type RedactionConfig struct {
	AnalyzerURL   string        `yaml:"analyzer_url"`
	AnonymizerURL string        `yaml:"anonymizer_url"`
	Entities      []string      `yaml:"entities"`
	Timeout       time.Duration `yaml:"timeout"`
}

// AIConfig holds classification backend settings.
type AIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// RoutingConfig holds the category-to-destination table and retry policy.
type RoutingConfig struct {
	Table              map[string][]string `yaml:"table"`
	DefaultDestination string              `yaml:"default_destination"`
	MaxAttempts        int                 `yaml:"max_attempts"`
	InitialBackoff     time.Duration       `yaml:"initial_backoff"`
	MaxBackoff         time.Duration       `yaml:"max_backoff"`
	Mail               MailConfig          `yaml:"mail"`
}

// MailConfig holds SMTP transport settings.
type MailConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CleanupConfig holds temp-file sweeping and processed-set retention.
type CleanupConfig struct {
	TmpDir        string        `yaml:"tmp_dir"`
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ProcessedTTL  time.Duration `yaml:"processed_ttl"` // 0 = keep forever
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// RedisConfig holds optional Redis settings for processed-set persistence.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}
