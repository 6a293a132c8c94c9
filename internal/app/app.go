package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ReelApp/internal/config"
	"github.com/GoArmGo/ReelApp/internal/core/ports"
	"github.com/GoArmGo/ReelApp/internal/handler"
	"github.com/GoArmGo/ReelApp/internal/usecase"
)

// Components: всё, что собирает DI-контейнер для запуска приложения.
type Components struct {
	VideoUseCase      usecase.VideoUseCase
	AuthUseCase       usecase.AuthUseCase
	UploadAuthUseCase usecase.UploadAuthUseCase
	MediaVerifier     usecase.MediaVerifier
	VideoConsumer     ports.VideoEventConsumer

	// MediaHandler равен nil, если приёмник загрузок не настроен
	MediaHandler *handler.MediaHandler

	// Closers закрываются в обратном порядке при остановке
	Closers []func() error
}

type App struct {
	Config     *config.Config
	logger     *slog.Logger
	components Components
}

func NewApp(cfg *config.Config, logger *slog.Logger, components Components) *App {
	return &App{
		Config:     cfg,
		logger:     logger,
		components: components,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode *string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", *mode)

	var err error

	switch *mode {
	case "server":
		err = a.runServer(ctx)

	case "worker":
		err = a.runWorker(ctx)

	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", *mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}

	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.components.Closers) - 1; i >= 0; i-- {
		if err := a.components.Closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.components.Closers = nil
	return errors.Join(errs...)
}
