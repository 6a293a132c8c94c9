package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"file://internal/database/migrations"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB"`
	}

	// Сессии: подписанный JWT + идентификатор сессии в Redis
	Session struct {
		Secret     string        `env:"SESSION_SECRET,required"`
		TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
		MaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"2160h"`
		CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"reelapp_session"`
		Secure     bool          `env:"SESSION_COOKIE_SECURE"`
	}

	// Внешний медиа-хостинг (подписанные загрузки)
	Media struct {
		PublicKey   string        `env:"MEDIA_PUBLIC_KEY"`
		PrivateKey  string        `env:"MEDIA_PRIVATE_KEY"`
		AuthTTL     time.Duration `env:"MEDIA_AUTH_TTL" envDefault:"30m"`
		URLEndpoint string        `env:"MEDIA_URL_ENDPOINT" envDefault:"http://localhost:9000"`
		// Дополнительные хосты, на которые worker может слать HEAD при проверке медиа
		VerifyHosts []string `env:"MEDIA_VERIFY_HOSTS" envSeparator:","`
	}

	// Настройки для MinIO. Если MINIO_ENDPOINT пуст, приёмник загрузок /media/upload не поднимается.
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"reelapp-media"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"video_created_queue"`
	}
}

// MediaReceiverEnabled сообщает, настроено ли собственное S3-хранилище для приёма загрузок.
func (c *Config) MediaReceiverEnabled() bool {
	return c.MinioEndpoint != ""
}

// MediaHosts возвращает хосты, медиа на которых проверяет worker:
// хост MEDIA_URL_ENDPOINT и всё из MEDIA_VERIFY_HOSTS.
func (c *Config) MediaHosts() []string {
	var hosts []string
	if u, err := url.Parse(c.Media.URLEndpoint); err == nil && u.Host != "" {
		hosts = append(hosts, u.Host)
	}
	for _, h := range c.Media.VerifyHosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Media.AuthTTL <= 0 || c.Media.AuthTTL >= time.Hour {
		return fmt.Errorf("MEDIA_AUTH_TTL должен быть больше нуля и меньше часа, получено %s", c.Media.AuthTTL)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL должен быть больше нуля, получено %s", c.Session.TTL)
	}
	if c.Session.MaxAge < c.Session.TTL {
		return fmt.Errorf("SESSION_MAX_AGE (%s) не может быть меньше SESSION_TTL (%s)", c.Session.MaxAge, c.Session.TTL)
	}
	if c.MediaReceiverEnabled() && (c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY_ID и MINIO_SECRET_ACCESS_KEY обязательны, если задан MINIO_ENDPOINT")
	}
	return nil
}
