package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the sentrascan server.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Telemetry TelemetryConfig
	Intel     IntelConfig
	Alert     AlertConfig
	ReportDir string
}

type DatabaseConfig struct {
	// URL enables the PostgreSQL scan log when set. Empty means the
	// in-memory store (zero config, local dev).
	URL            string
	MaxConnections int
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// IntelConfig carries the API credentials for the external intelligence
// sources. Any of these may also be supplied per-request on POST /scan,
// overriding the server value for that run only.
type IntelConfig struct {
	AbuseIPDBKey  string
	VirusTotalKey string
	IPInfoToken   string
	HIBPKey       string
	HunterKey     string
	SerpAPIKey    string
	GeminiKey     string

	// Timeout bounds every outbound intelligence call.
	Timeout time.Duration
}

// AlertConfig configures the notification channels. Channels without an
// endpoint (or sender) configured are silently skipped.
type AlertConfig struct {
	SMTPHost       string
	SMTPPort       int
	EmailSender    string
	EmailPassword  string
	EmailRecipient string
	SlackWebhook   string
	DiscordWebhook string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("SENTRASCAN_PORT", 8080),
		Version: envStr("SENTRASCAN_VERSION", "0.2.0"),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "sentrascan"),
		},
		Intel: IntelConfig{
			AbuseIPDBKey:  envStr("ABUSEIPDB_API_KEY", ""),
			VirusTotalKey: envStr("VIRUSTOTAL_API_KEY", ""),
			IPInfoToken:   envStr("IPINFO_TOKEN", ""),
			HIBPKey:       envStr("HIBP_API_KEY", ""),
			HunterKey:     envStr("HUNTER_API_KEY", ""),
			SerpAPIKey:    envStr("SERPAPI_KEY", ""),
			GeminiKey:     envStr("GEMINI_API_KEY", ""),
			Timeout:       envDuration("INTEL_HTTP_TIMEOUT", 15*time.Second),
		},
		Alert: AlertConfig{
			SMTPHost:       envStr("ALERT_SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:       envInt("ALERT_SMTP_PORT", 465),
			EmailSender:    envStr("ALERT_EMAIL_SENDER", ""),
			EmailPassword:  envStr("ALERT_EMAIL_PASSWORD", ""),
			EmailRecipient: envStr("ALERT_EMAIL_RECIPIENT", ""),
			SlackWebhook:   envStr("ALERT_SLACK_WEBHOOK", ""),
			DiscordWebhook: envStr("ALERT_DISCORD_WEBHOOK", ""),
		},
		ReportDir: envStr("SENTRASCAN_REPORT_DIR", "reports"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
