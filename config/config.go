package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Gemini API key for the ranking oracle. Empty disables the oracle.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Dialogue engine tuning.
	SessionTTLMinutes      int `mapstructure:"SESSION_TTL_MINUTES"`
	CalendarTimeoutSeconds int `mapstructure:"CALENDAR_TIMEOUT_SECONDS"`
	OracleTimeoutSeconds   int `mapstructure:"ORACLE_TIMEOUT_SECONDS"`

	// Scheduling defaults.
	CandidateStepMinutes int `mapstructure:"CANDIDATE_STEP_MINUTES"`
	TopCandidates        int `mapstructure:"TOP_CANDIDATES"`
	WorkDayStartMinute   int `mapstructure:"WORK_DAY_START_MINUTE"`
	WorkDayEndMinute     int `mapstructure:"WORK_DAY_END_MINUTE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("SESSION_TTL_MINUTES", 15)
	viper.SetDefault("CALENDAR_TIMEOUT_SECONDS", 5)
	viper.SetDefault("ORACLE_TIMEOUT_SECONDS", 5)
	viper.SetDefault("CANDIDATE_STEP_MINUTES", 30)
	viper.SetDefault("TOP_CANDIDATES", 3)
	viper.SetDefault("WORK_DAY_START_MINUTE", 9*60)
	viper.SetDefault("WORK_DAY_END_MINUTE", 17*60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
