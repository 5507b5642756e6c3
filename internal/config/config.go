package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath  string
	FinMindAPIURL string
	FinMindToken  string
	WeightsPath   string
	StockListPath string
	ReportDir     string
	TopN          int

	// ScreeningSchedule is a cron expression with seconds, e.g.
	// "0 0 18 * * MON-FRI" for 6 PM after the TWSE close.
	ScreeningSchedule string

	TelegramBotToken string
	TelegramChatID   string
	LineNotifyToken  string

	LogLevel string
	Port     int
	DevMode  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/screener.db"),
		FinMindAPIURL:     getEnv("FINMIND_API_URL", "https://api.finmindtrade.com"),
		FinMindToken:      getEnv("FINMIND_TOKEN", ""),
		WeightsPath:       getEnv("WEIGHTS_PATH", "./config/weights.yaml"),
		StockListPath:     getEnv("STOCK_LIST_PATH", "./config/stocks.txt"),
		ReportDir:         getEnv("REPORT_DIR", "./reports"),
		TopN:              getEnvAsInt("SCREEN_TOP_N", 30),
		ScreeningSchedule: getEnv("SCREENING_SCHEDULE", "0 0 18 * * MON-FRI"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
		LineNotifyToken:   getEnv("LINE_NOTIFY_TOKEN", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.StockListPath == "" {
		return fmt.Errorf("STOCK_LIST_PATH is required")
	}

	if c.TopN <= 0 {
		return fmt.Errorf("SCREEN_TOP_N must be positive")
	}

	// Note: FinMind token optional, anonymous access is rate-limited harder

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
