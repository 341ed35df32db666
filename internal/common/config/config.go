// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`
	History    HistoryConfig    `mapstructure:"history"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- OpenAI / Generation Config ---

// OpenAIConfig carries the generation credential and the per-category
// assistant identifiers. Any assistant entry may be absent; the router
// simply builds a shorter fallback chain.
type OpenAIConfig struct {
	APIKey             string            `mapstructure:"api_key"`
	BaseURL            string            `mapstructure:"base_url"`
	Model              string            `mapstructure:"model"`
	Assistants         map[string]string `mapstructure:"assistants"`
	UniversalAssistant string            `mapstructure:"universal_assistant"`
}

type GenerationConfig struct {
	AttemptTimeout        int    `mapstructure:"attempt_timeout"` // milliseconds, whole run/poll budget per assistant
	PollInterval          int    `mapstructure:"poll_interval"`   // milliseconds between run status polls
	DefaultLanguage       string `mapstructure:"default_language"`
	DefaultMarket         string `mapstructure:"default_market"`
	DefaultEmojiIntensity int    `mapstructure:"default_emoji_intensity"`
}

type RateLimitConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Store           string `mapstructure:"store"` // "memory" or "redis"
	Limit           int    `mapstructure:"limit"`
	Window          int    `mapstructure:"window"`           // milliseconds
	CleanupInterval int    `mapstructure:"cleanup_interval"` // milliseconds, memory store only
}

type AnalyticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SupportedCategories lists every category with a dedicated assistant slot.
// "other" doubles as the universal assistant's category.
var SupportedCategories = []string{
	"electronics",
	"clothing",
	"beauty",
	"home",
	"sports",
	"food",
	"toys",
	"books",
	"jewelry",
	"health",
	"automotive",
	"garden",
	"pet",
	"office",
	"music",
	"baby",
	"other",
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
