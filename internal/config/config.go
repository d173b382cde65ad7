// Package config загружает конфигурацию сервера качества из переменных
// окружения.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port string `json:"port"`

	// Каталоги с данными
	DataDir    string `json:"data_dir"`
	CatalogDir string `json:"catalog_dir"`

	// База снимков диагностики
	SnapshotDBPath string `json:"snapshot_db_path"`

	// Пороги нечеткого сопоставления со справочниками
	ModelMatchThreshold   float64 `json:"model_match_threshold"`
	FailureMatchThreshold float64 `json:"failure_match_threshold"`

	// Rate limiting
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`

	// Завершение работы
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("PORT", "8080"),

		DataDir:    getEnv("DATA_DIR", "data"),
		CatalogDir: getEnv("CATALOG_DIR", ""),

		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "snapshots.db"),

		ModelMatchThreshold:   getEnvFloat("MODEL_MATCH_THRESHOLD", 0.85),
		FailureMatchThreshold: getEnvFloat("FAILURE_MATCH_THRESHOLD", 0.75),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	// CATALOG_DIR по умолчанию живет внутри DATA_DIR
	if config.CatalogDir == "" {
		config.CatalogDir = config.DataDir
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
