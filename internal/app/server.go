package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GoArmGo/ReelApp/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 30 * time.Second

// Router собирает HTTP-маршруты приложения.
func (a *App) Router() http.Handler {
	c := a.components
	videoHandler := handler.NewVideoHandler(c.VideoUseCase, a.logger)
	authHandler := handler.NewAuthHandler(c.AuthUseCase, handler.CookieSettings{
		Name:   a.Config.Session.CookieName,
		Secure: a.Config.Session.Secure,
	}, a.logger)
	uploadAuthHandler := handler.NewUploadAuthHandler(c.UploadAuthUseCase, a.logger)
	requireSession := handler.RequireSession(c.AuthUseCase, a.Config.Session.CookieName, a.logger)

	r := chi.NewRouter()
	r.Use(handler.RequestLogger(a.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(a.Config.RequestTimeout))

		r.Get("/videos", videoHandler.ListVideos)
		r.Get("/videos/{id}", videoHandler.GetVideo)
		r.With(requireSession).Post("/videos", videoHandler.CreateVideo)

		r.Get("/upload-auth", uploadAuthHandler.UploadAuth)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.With(requireSession).Post("/auth/logout", authHandler.Logout)
		r.With(requireSession).Get("/auth/session", authHandler.Session)
	})

	// загрузка файлов может длиться дольше REQUEST_TIMEOUT
	if c.MediaHandler != nil {
		r.Post("/media/upload", c.MediaHandler.Upload)
	}

	return r
}

// runServer запускает HTTP сервер и ждёт отмены контекста
func (a *App) runServer(ctx context.Context) error {
	serverAddr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", serverAddr, "media_receiver", a.components.MediaHandler != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка при запуске сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server")

	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("http server stopped")
	return nil
}
