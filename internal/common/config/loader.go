// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like OPENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the working directory upwards so tests in
// nested packages pick up the same file as the server binary.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// unexpanded clears values whose ${VAR} placeholder had no matching
// environment variable, so they read as absent rather than literal.
func unexpanded(val string) bool {
	return strings.Contains(val, "${")
}

// overrideEmptyConfig fills credential/assistant fields straight from the
// environment when the yaml left them empty. Assistant IDs follow the
// OPENAI_ASSISTANT_<CATEGORY> convention.
func overrideEmptyConfig(cfg *Config) {
	if unexpanded(cfg.OpenAI.APIKey) {
		cfg.OpenAI.APIKey = ""
	}
	if unexpanded(cfg.OpenAI.UniversalAssistant) {
		cfg.OpenAI.UniversalAssistant = ""
	}
	for category, id := range cfg.OpenAI.Assistants {
		if unexpanded(id) {
			cfg.OpenAI.Assistants[category] = ""
		}
	}
	if unexpanded(cfg.Database.Postgres.User) {
		cfg.Database.Postgres.User = ""
	}
	if unexpanded(cfg.Database.Postgres.Password) {
		cfg.Database.Postgres.Password = ""
	}

	if cfg.OpenAI.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.OpenAI.APIKey = val
		}
	}

	if cfg.OpenAI.Assistants == nil {
		cfg.OpenAI.Assistants = make(map[string]string)
	}
	for _, category := range SupportedCategories {
		if cfg.OpenAI.Assistants[category] != "" {
			continue
		}
		envKey := "OPENAI_ASSISTANT_" + strings.ToUpper(category)
		if val := os.Getenv(envKey); val != "" {
			cfg.OpenAI.Assistants[category] = val
		}
	}

	if cfg.OpenAI.UniversalAssistant == "" {
		if val := os.Getenv("OPENAI_ASSISTANT_UNIVERSAL"); val != "" {
			cfg.OpenAI.UniversalAssistant = val
		}
	}
	// The "other" slot doubles as the universal assistant when no dedicated
	// universal identifier is configured.
	if cfg.OpenAI.UniversalAssistant == "" {
		cfg.OpenAI.UniversalAssistant = cfg.OpenAI.Assistants["other"]
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "copyflow-server"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// Generation requests can hold the connection for the full fallback
		// chain, so the write timeout covers several attempt budgets.
		cfg.Server.WriteTimeout = 120000
	}

	// OpenAI defaults
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o"
	}

	// Generation defaults
	if cfg.Generation.AttemptTimeout == 0 {
		cfg.Generation.AttemptTimeout = 30000
	}
	if cfg.Generation.PollInterval == 0 {
		cfg.Generation.PollInterval = 1000
	}
	if cfg.Generation.DefaultLanguage == "" {
		cfg.Generation.DefaultLanguage = "en"
	}
	if cfg.Generation.DefaultMarket == "" {
		cfg.Generation.DefaultMarket = "US"
	}
	if cfg.Generation.DefaultEmojiIntensity == 0 {
		cfg.Generation.DefaultEmojiIntensity = 2
	}

	// Rate limit defaults
	if cfg.RateLimit.Store == "" {
		cfg.RateLimit.Store = "memory"
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 30
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60000
	}
	if cfg.RateLimit.CleanupInterval == 0 {
		cfg.RateLimit.CleanupInterval = 300000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Analytics defaults
	if cfg.Analytics.Index == "" {
		cfg.Analytics.Index = "copyflow-generations"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. The OpenAI API key
// is deliberately not required here: its absence is reported per request as a
// configuration error so the server can still serve health checks.
func validateConfig(cfg *Config) error {
	if cfg.RateLimit.Enabled && cfg.RateLimit.Store == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required for the redis rate limit store")
	}
	if cfg.RateLimit.Store != "memory" && cfg.RateLimit.Store != "redis" {
		return fmt.Errorf("rate_limit.store must be \"memory\" or \"redis\", got %q", cfg.RateLimit.Store)
	}

	if cfg.Analytics.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when analytics is enabled")
	}

	if cfg.History.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when history is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when history is enabled")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when history is enabled")
		}
	}

	return nil
}
