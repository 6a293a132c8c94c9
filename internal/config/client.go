package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
)

// ClientConfig: настройки CLI reelctl.
type ClientConfig struct {
	APIURL    string `env:"REELAPP_URL" envDefault:"http://localhost:8080"`
	UploadURL string `env:"REELAPP_UPLOAD_URL"`
	Token     string `env:"REELAPP_TOKEN"`
	LogLevel  string `env:"REELAPP_LOG_LEVEL" envDefault:"warn"`
}

// LoadClientConfig читает настройки CLI из окружения.
// Без REELAPP_UPLOAD_URL файлы отправляются в приёмник самого API.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := ClientConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации клиента: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.UploadURL == "" {
		cfg.UploadURL = cfg.APIURL + "/media/upload"
	}
	return &cfg, nil
}
