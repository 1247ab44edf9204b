package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Insight InsightConfig `mapstructure:"insight"`
	Survey  SurveyConfig  `mapstructure:"survey"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
	AssetsDir     string `mapstructure:"assets_dir"`
}

// StoreConfig selects and configures the response store backend.
type StoreConfig struct {
	Backend  string         `mapstructure:"backend"`
	Key      string         `mapstructure:"key"`
	File     FileConfig     `mapstructure:"file"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

// FileConfig holds the directory used by the file backend.
type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig holds postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.DBName, d.Port)
}

// SQLiteConfig holds the sqlite database path.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// MongoConfig holds mongo connection settings.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// InsightConfig configures the text generation service.
type InsightConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Fallback    string        `mapstructure:"fallback"`
}

// SurveyConfig holds questionnaire and session settings.
type SurveyConfig struct {
	Catalogue       string        `mapstructure:"catalogue"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	TimestampLayout string        `mapstructure:"timestamp_layout"`
	Timezone        string        `mapstructure:"timezone"`
}

// Location resolves the configured timezone, falling back to UTC.
func (s SurveyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		return time.UTC
	}
	return loc
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.assets_dir", "assets")

	// Store defaults
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.key", "stop_addiction_results")
	v.SetDefault("store.file.dir", "data")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.database.host", "db")
	v.SetDefault("store.database.port", "5432")
	v.SetDefault("store.database.user", "user")
	v.SetDefault("store.database.password", "password")
	v.SetDefault("store.database.dbname", "stopaddiction")
	v.SetDefault("store.sqlite.path", "data/responses.db")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "stopaddiction")
	v.SetDefault("store.mongo.collection", "blobs")

	// Insight defaults
	v.SetDefault("insight.api_key", "")
	v.SetDefault("insight.model", "gemini-3-flash-preview")
	v.SetDefault("insight.temperature", 0.8)
	v.SetDefault("insight.timeout", 0)
	v.SetDefault("insight.fallback", "")

	// Survey defaults
	v.SetDefault("survey.catalogue", "")
	v.SetDefault("survey.session_ttl", 2*time.Hour)
	v.SetDefault("survey.sweep_interval", time.Minute)
	v.SetDefault("survey.timestamp_layout", "02.01.2006, 15:04:05")
	v.SetDefault("survey.timezone", "Asia/Almaty")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs
}

// Load reads configuration from <projectRoot>/config/config.yaml and the
// environment. It's okay if the file doesn't exist; defaults and env vars
// will be used.
func Load(projectRoot string) (*Config, *viper.Viper, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("STOPADDICTION") // e.g., STOPADDICTION_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("insight.api_key", "STOPADDICTION_INSIGHT_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, nil, fmt.Errorf("error binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &conf, v, nil
}

// Watch sets up hot-reloading. onChange receives the freshly decoded config.
func Watch(v *viper.Viper, log *zap.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var conf Config
		if err := v.Unmarshal(&conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		onChange(&conf)
	})
	v.WatchConfig()
}
