package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Instagram Graph API.
	VerifyToken     string `mapstructure:"VERIFY_TOKEN"`
	PageAccessToken string `mapstructure:"PAGE_ACCESS_TOKEN"`
	GraphAPIBaseURL string `mapstructure:"GRAPH_API_BASE_URL"`
	GraphAPIVersion string `mapstructure:"GRAPH_API_VERSION"`

	// OpenAI-compatible language model API.
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`

	// Google Calendar.
	GoogleCalendarID      string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredentialsPath string `mapstructure:"GOOGLE_CALENDAR_CREDENTIALS_PATH"`

	// Business parameters. Hours support split windows, e.g.
	// BUSINESS_HOURS_START="09:00;16:00" with BUSINESS_HOURS_END="13:00;20:00".
	BusinessName        string `mapstructure:"BUSINESS_NAME"`
	BusinessTimezone    string `mapstructure:"BUSINESS_TIMEZONE"`
	BusinessHoursStart  string `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd    string `mapstructure:"BUSINESS_HOURS_END"`
	AppointmentDuration int    `mapstructure:"APPOINTMENT_DURATION_MINUTES"`
	DefaultServiceType  string `mapstructure:"DEFAULT_SERVICE_TYPE"`
	MaxSuggestedSlots   int    `mapstructure:"MAX_SUGGESTED_SLOTS"`
	ReminderLeadMinutes int    `mapstructure:"REMINDER_LEAD_MINUTES"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisContextDB       int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// MongoDB.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
}

var AppConfig Config

// LoadConfig initializes Viper to load config values from env, file, or defaults.
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("GRAPH_API_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("GRAPH_API_VERSION", "v19.0")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("GOOGLE_CALENDAR_CREDENTIALS_PATH", "credentials.json")
	viper.SetDefault("BUSINESS_NAME", "the shop")
	viper.SetDefault("BUSINESS_TIMEZONE", "America/Los_Angeles")
	viper.SetDefault("BUSINESS_HOURS_START", "09:00")
	viper.SetDefault("BUSINESS_HOURS_END", "18:00")
	viper.SetDefault("APPOINTMENT_DURATION_MINUTES", 60)
	viper.SetDefault("DEFAULT_SERVICE_TYPE", "Haircut")
	viper.SetDefault("MAX_SUGGESTED_SLOTS", 3)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_CONTEXT_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")

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
