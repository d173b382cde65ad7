package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// Валидация каталогов с данными
	if c.DataDir == "" {
		errors = append(errors, "data dir is required")
	}
	if c.CatalogDir == "" {
		errors = append(errors, "catalog dir is required")
	}
	if c.SnapshotDBPath == "" {
		errors = append(errors, "snapshot db path is required")
	}

	// Пороги сопоставления живут в (0, 1]
	if c.ModelMatchThreshold <= 0 || c.ModelMatchThreshold > 1 {
		errors = append(errors, fmt.Sprintf("model match threshold must be in (0, 1], got %v", c.ModelMatchThreshold))
	}
	if c.FailureMatchThreshold <= 0 || c.FailureMatchThreshold > 1 {
		errors = append(errors, fmt.Sprintf("failure match threshold must be in (0, 1], got %v", c.FailureMatchThreshold))
	}

	// Валидация rate limiting
	if c.RateLimitRPS <= 0 {
		errors = append(errors, "rate limit rps must be positive")
	}
	if c.RateLimitBurst < 1 {
		errors = append(errors, "rate limit burst must be at least 1")
	}

	// Валидация таймаутов
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, "shutdown timeout must be at least 1 second")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Addr возвращает адрес прослушивания HTTP сервера
func (c *Config) Addr() string {
	return ":" + c.Port
}
