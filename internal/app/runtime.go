package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/config"
	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/server"
)

// Runtime 은 조립이 끝난 서버 프로세스 전체를 묶는다.
type Runtime struct {
	Container *Container
	Logger    *slog.Logger

	Router *gin.Engine
	Addr   string
	Server *http.Server
}

// Close - 런타임 리소스 정리 (DB, 스토어 연결 해제)
func (r *Runtime) Close() {
	if r != nil && r.Container != nil {
		r.Container.Close()
	}
}

// BuildRuntime 은 컨테이너와 HTTP 서버를 조립해 실행 가능한 런타임을 만든다.
// H2C(HTTP/2 Cleartext)를 기본으로 사용하여 멀티플렉싱과 헤더 압축 이점을 제공한다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	container, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(ctx, logger, container.APIHandler, container.AuthHandler)
	if err != nil {
		container.Close()
		return nil, err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.WrapH2C(router),
		ReadHeaderTimeout: constants.ServerTimeout.ReadHeader,
		ReadTimeout:       constants.ServerTimeout.Read,
		WriteTimeout:      constants.ServerTimeout.Write,
		IdleTimeout:       constants.ServerTimeout.Idle,
		MaxHeaderBytes:    constants.ServerTimeout.MaxHeaderBytes,
	}

	return &Runtime{
		Container: container,
		Logger:    logger,
		Router:    router,
		Addr:      addr,
		Server:    srv,
	}, nil
}

// Start 는 HTTP 서버를 백그라운드로 띄운다.
func (r *Runtime) Start(errCh chan<- error) {
	if r == nil || r.Server == nil {
		return
	}

	go func() {
		if err := r.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if errCh != nil {
				errCh <- fmt.Errorf("HTTP server error: %w", err)
				return
			}
			r.Logger.Error("HTTP server error", slog.Any("error", err))
		}
	}()
}

// Shutdown 은 HTTP 서버를 graceful하게 내린다.
func (r *Runtime) Shutdown(ctx context.Context) {
	if r == nil || r.Server == nil {
		return
	}
	if err := r.Server.Shutdown(ctx); err != nil {
		r.Logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}
}

// Run 은 시그널을 받을 때까지 서버를 운영한다.
func (r *Runtime) Run() {
	if r == nil {
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	r.Start(errCh)
	r.Logger.Info("Watch stats server started", slog.String("addr", r.Addr))

	select {
	case sig := <-sigCh:
		r.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		r.Logger.Error("Server error", slog.Any("error", err))
	}

	r.Logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ServerTimeout.Shutdown)
	defer shutdownCancel()

	r.Shutdown(shutdownCtx)
	r.Logger.Info("Shutdown complete")
}
