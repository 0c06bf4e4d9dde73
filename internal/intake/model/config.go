package model

import (
	"strings"
	"time"
)

// ================ Config ================
type SessionConfig struct {
	Backend string `envconfig:"SESSION_BACKEND" default:"memory"`
	// Zero keeps sessions for the life of the store.
	TTL string `envconfig:"SESSION_TTL" default:"0"`
}

type DialogueConfig struct {
	OTPTTL      string `envconfig:"OTP_TTL" default:"5m"`
	ShowDevCode bool   `envconfig:"OTP_SHOW_DEV_CODE" default:"true"`
	RefPrefix   string `envconfig:"COMPLAINT_REF_PREFIX" default:"CMP-"`
}

type RegistryConfig struct {
	Brokers     string `envconfig:"REGISTRY_BROKERS_FILE" default:"data/brokers.csv"`
	Exchanges   string `envconfig:"REGISTRY_EXCHANGES_FILE" default:"data/exchanges.csv"`
	Companies   string `envconfig:"REGISTRY_COMPANIES_FILE" default:"data/companies.csv"`
	MutualFunds string `envconfig:"REGISTRY_MUTUAL_FUNDS_FILE" default:"data/mutual_funds.csv"`
	Advisers    string `envconfig:"REGISTRY_ADVISERS_FILE" default:"data/investment_advisers.csv"`
}

type ClassifierConfig struct {
	// keyword | gemini
	Backend       string  `envconfig:"CLASSIFIER_BACKEND" default:"keyword"`
	APIKey        string  `envconfig:"GEMINI_API_KEY"`
	BaseURL       string  `envconfig:"GEMINI_BASE_URL"`
	Model         string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens     int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"256"`
	Temperature   float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0"`
	MinConfidence float64 `envconfig:"CLASSIFIER_MIN_CONFIDENCE" default:"0.45"`
	Timeout       string  `envconfig:"CLASSIFIER_TIMEOUT" default:"15s"`
}

type StorageConfig struct {
	// memory | postgres
	Backend   string `envconfig:"COMPLAINT_BACKEND" default:"memory"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	// Empty disables dataset appends.
	DatasetCSV string `envconfig:"DATASET_CSV"`
}

type HTTPConfig struct {
	Addr          string `envconfig:"HTTP_ADDR" default:":8080"`
	MaxUploadMB   int64  `envconfig:"HTTP_MAX_UPLOAD_MB" default:"16"`
	ReadTimeout   string `envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout  string `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	ShutdownGrace string `envconfig:"HTTP_SHUTDOWN_GRACE" default:"10s"`
	AdminToken    string `envconfig:"ADMIN_TOKEN"`
}

// DurationOr parses a Go duration string. A bare integer is read as seconds;
// empty or malformed values yield def.
func DurationOr(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if d, err := time.ParseDuration(s + "s"); err == nil {
		return d
	}
	return def
}
