package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Discord   DiscordConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Tracking  TrackingConfig
	Cleanup   CleanupConfig
	Retry     RetryConfig
	Panel     PanelConfig
	VaultCord VaultCordConfig
	Server    ServerConfig
	App       AppConfig
	Backup    BackupConfig
}

// DiscordConfig holds the bot identity and the channels it reports to
type DiscordConfig struct {
	Token        string
	MainGuildID  string
	LogChannelID string
	AdminUserID  string
	PullBotID    string
	ClientID     string
}

// StorageConfig selects where JSON documents are persisted
type StorageConfig struct {
	Backend      string // "file" or "database"
	DataDir      string
	Debounce     time.Duration
	AccountsFile string
}

// DatabaseConfig holds document-table connection settings
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// TrackingConfig controls invite attribution
type TrackingConfig struct {
	AltAccountDays  int
	SettleDelay     time.Duration
	RejoinDetection bool
	JoinTimeout     time.Duration
}

// CleanupConfig controls the invite sweeper
type CleanupConfig struct {
	Interval    time.Duration
	MaxInvites  int
	Target      int
	DeleteDelay time.Duration
}

// RetryConfig is the retry policy applied to every platform call
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// PanelConfig holds the boost-panel endpoint
type PanelConfig struct {
	URL     string
	Timeout time.Duration
}

// VaultCordConfig holds the members-farm endpoint
type VaultCordConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// ServerConfig holds admin API settings
type ServerConfig struct {
	Enabled        bool
	Port           string
	AllowedOrigins []string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
}

// BackupConfig holds S3-compatible backup settings
type BackupConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Interval        time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Discord: DiscordConfig{
			Token:        getEnv("DISCORD_TOKEN", ""),
			MainGuildID:  getEnv("MAIN_GUILD_ID", ""),
			LogChannelID: getEnv("LOG_CHANNEL_ID", ""),
			AdminUserID:  getEnv("ADMIN_ID", ""),
			PullBotID:    getEnv("PULL_BOT_ID", ""),
			ClientID:     getEnv("CLIENT_ID", ""),
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", "file"),
			DataDir:      getEnv("DATA_DIR", "."),
			Debounce:     getEnvDuration("PERSIST_DEBOUNCE", 0),
			AccountsFile: getEnv("ACCOUNTS_FILE", "accounts.txt"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			DSN:    getEnv("DATABASE_URL", "invite-tracker.db"),
		},
		Tracking: TrackingConfig{
			AltAccountDays:  getEnvInt("ALT_ACCOUNT_DAYS", 10),
			SettleDelay:     getEnvDuration("JOIN_SETTLE_DELAY", 2*time.Second),
			RejoinDetection: getEnvBool("TRACK_REJOIN_DETECTION", false),
			JoinTimeout:     getEnvDuration("JOIN_TIMEOUT", time.Minute),
		},
		Cleanup: CleanupConfig{
			Interval:    getEnvDuration("CLEANUP_INTERVAL", 900*time.Second),
			MaxInvites:  getEnvInt("MAX_INVITES", 950),
			Target:      getEnvInt("TARGET_INVITES", 800),
			DeleteDelay: getEnvDuration("CLEANUP_DELETE_DELAY", 1500*time.Millisecond),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			Backoff:     getEnvDuration("RETRY_BACKOFF", 2*time.Second),
		},
		Panel: PanelConfig{
			URL:     getEnv("PANEL_URL", "https://bulkmedya.org/api/v2"),
			Timeout: getEnvDuration("PANEL_TIMEOUT", 10*time.Second),
		},
		VaultCord: VaultCordConfig{
			URL:     getEnv("VAULTCORD_URL", "https://api.vaultcord.com"),
			APIKey:  getEnv("VAULTCORD_API_KEY", ""),
			Timeout: getEnvDuration("VAULTCORD_TIMEOUT", 15*time.Second),
		},
		Server: ServerConfig{
			Enabled:        getEnvBool("ADMIN_API_ENABLED", false),
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		App: AppConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			Prefix:          getEnv("BACKUP_PREFIX", "invite-tracker"),
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("BACKUP_ACCESS_KEY_SECRET", ""),
			Interval:        getEnvDuration("BACKUP_INTERVAL", time.Hour),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings the bot cannot start without
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	if c.Server.Enabled && c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_API_ENABLED is set")
	}

	if c.Storage.Backend != "file" && c.Storage.Backend != "database" {
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Cleanup.Target > c.Cleanup.MaxInvites {
		return fmt.Errorf("TARGET_INVITES (%d) must not exceed MAX_INVITES (%d)", c.Cleanup.Target, c.Cleanup.MaxInvites)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go durations ("2s") or a bare number of seconds ("900")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
