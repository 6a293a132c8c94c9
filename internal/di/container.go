package di

import (
	"context"
	"time"

	"github.com/GoArmGo/ReelApp/internal/adapter/imagekit"
	"github.com/GoArmGo/ReelApp/internal/adapter/redisstore"
	"github.com/GoArmGo/ReelApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/ReelApp/internal/app"
	"github.com/GoArmGo/ReelApp/internal/auth"
	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/database/client"
	"github.com/GoArmGo/ReelApp/internal/database/postgres"
	"github.com/GoArmGo/ReelApp/internal/database/storage"
	"github.com/GoArmGo/ReelApp/internal/handler"
	"github.com/GoArmGo/ReelApp/internal/logger"
	"github.com/GoArmGo/ReelApp/internal/rabbitmq"
	"github.com/GoArmGo/ReelApp/internal/usecase"
)

// максимум одновременных загрузок в приёмник /media/upload
const maxConcurrentUploads = 4

const mediaHeadTimeout = 5 * time.Second

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogCfg := logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
	slogger := logger.NewSlog(slogCfg)

	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// 2. Инициализация PostgreSQL клиента (миграции применяются здесь же)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient.Close)

	// 3. Инициализация хранилищ
	videoStorage := storage.NewVideoStorage(dbClient.DB, slogger)
	userStorage := postgres.NewGormUserStorage(dbClient.Gorm, slogger)

	// 4. Redis: сессии и одноразовые токены загрузки
	rdb, err := redisstore.NewClient(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, rdb.Close)
	sessionStore := redisstore.NewStore(rdb, slogger)

	// 5. Инициализация RabbitMQ клиента
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, rabbitMQClient.Close)

	// 6. Publisher за предохранителем, consumer напрямую
	videoPublisher := rabbitmq.NewBreakerPublisher(rabbitMQClient, rabbitmq.DefaultBreakerSettings(), slogger)

	// 7. Подпись загрузок и токены сессий
	signer := imagekit.NewSigner(cfg.Media.PublicKey, cfg.Media.PrivateKey, cfg.Media.AuthTTL)
	if cfg.Media.PublicKey == "" || cfg.Media.PrivateKey == "" {
		slogger.Warn("media host keys are not set, /upload-auth will fail")
	}
	tokenIssuer := auth.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.MaxAge)

	// 8. Инициализация UseCase
	components := app.Components{
		VideoUseCase:      usecase.NewVideoUseCase(videoStorage, videoPublisher, slogger),
		AuthUseCase:       usecase.NewAuthUseCase(userStorage, sessionStore, tokenIssuer, slogger),
		UploadAuthUseCase: usecase.NewUploadAuthUseCase(signer),
		MediaVerifier:     usecase.NewMediaVerifier(mediaHeadTimeout, cfg.MediaHosts(), slogger),
		VideoConsumer:     rabbitMQClient,
	}

	// 9. Собственный приёмник загрузок (S3 / MinIO), если настроен
	if cfg.MediaReceiverEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
		cancel()
		if err != nil {
			return fail(err)
		}
		uploadLimiter := make(chan struct{}, maxConcurrentUploads)
		components.MediaHandler = handler.NewMediaHandler(signer, sessionStore, fileStorage, uploadLimiter, slogger)
		slogger.Info("media receiver enabled", "bucket", cfg.MinioBucketName)
	}

	components.Closers = closers
	return app.NewApp(cfg, slogger, components), nil
}
