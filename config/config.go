package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LLMConfig describes the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"` // Name of the environment variable holding the API key
	APIKey    string `mapstructure:"-"`           // Resolved at load time, never read from YAML
	TimeoutS  int    `mapstructure:"timeout_seconds"`
}

// SyncConfig configures the Firestore record store.
type SyncConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ProjectID         string `mapstructure:"project_id"`
	ProfileCollection string `mapstructure:"profile_collection"`
	PlanCollection    string `mapstructure:"plan_collection"`
}

// NotificationConfig configures training reminders.
type NotificationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hour     int    `mapstructure:"hour"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

// StorageConfig configures the meal photo bucket.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"bucket"`
	Region  string `mapstructure:"region"`
	Prefix  string `mapstructure:"prefix"`
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // "memory", a SQLite file path, or a postgres URL/DSN
	}
	LLM       LLMConfig `mapstructure:"llm"`
	Assistant struct {
		HistoryLimit int `mapstructure:"history_limit"`
	}
	Sync          SyncConfig         `mapstructure:"sync"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("llm.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	viper.SetDefault("llm.model", "qwen-plus")
	viper.SetDefault("llm.api_key_env", "ALIYUN_API_KEY")
	viper.SetDefault("llm.timeout_seconds", 60)
	viper.SetDefault("assistant.history_limit", 50)
	viper.SetDefault("sync.enabled", false)
	viper.SetDefault("sync.profile_collection", "profiles")
	viper.SetDefault("sync.plan_collection", "plans")
	viper.SetDefault("notifications.enabled", false)
	viper.SetDefault("notifications.hour", 19)
	viper.SetDefault("notifications.region", "us-east-1")
	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.prefix", "meal-photos")
}

// LoadConfig loads configuration from .env, config.yaml and environment variables.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: [Config] No .env file loaded, relying on process environment.")
	}

	viper.SetConfigName("config")    // Name of config file (without extension)
	viper.SetConfigType("yaml")      // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath("./config")  // Path to look for the config file in
	viper.AddConfigPath(".")         // Optionally look for config in the working directory
	viper.AddConfigPath("../config") // For running from locations like tests
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}
	applyEnvOverrides(&AppConfig)
	log.Println("INFO: [Config] Configuration loading complete.")
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
		log.Println("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}

	keyEnv := cfg.LLM.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "ALIYUN_API_KEY"
	}
	cfg.LLM.APIKey = strings.TrimSpace(os.Getenv(keyEnv))
	if cfg.LLM.APIKey == "" {
		if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
			cfg.LLM.APIKey = key
			keyEnv = "LLM_API_KEY"
		}
	}
	if cfg.LLM.APIKey == "" || cfg.LLM.APIKey == "YOUR_API_KEY_HERE" {
		cfg.LLM.APIKey = ""
		log.Printf("WARN: [Config] LLM API key (env var '%s') is not set. AI features will fall back to local behaviour.", keyEnv)
	} else {
		log.Printf("INFO: [Config] Loaded LLM API key from environment variable '%s'.", keyEnv)
	}
}
