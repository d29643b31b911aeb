package app

import (
	"fmt"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/config"
	"github.com/fanerrL/lunatv-live-go/internal/server"
	"github.com/fanerrL/lunatv-live-go/internal/service/stats"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/service/system"
	"github.com/fanerrL/lunatv-live-go/internal/service/userdir"
	"github.com/fanerrL/lunatv-live-go/internal/service/watch"
)

// Container 는 애플리케이션 서비스 그래프를 보관한다.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store      *store.Service
	Users      *userdir.Service
	Settlement *watch.Settlement
	Tracker    *watch.Tracker
	Reporter   *stats.Reporter
	Collector  *system.Collector
	Sessions   *server.SessionStore

	APIHandler  *server.APIHandler
	AuthHandler *server.AuthHandler

	cleanup func()
}

// Close - 컨테이너 리소스 정리 (DB, 스토어 연결 해제)
func (c *Container) Close() {
	if c != nil && c.cleanup != nil {
		c.cleanup()
	}
}

// BuildContainer 는 설정으로부터 전체 서비스 그래프를 조립한다.
// 실패 시 이미 열린 연결을 정리하고 에러를 반환한다.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	storeSvc, err := store.NewStoreService(store.Config{
		Host:     cfg.Valkey.Host,
		Port:     cfg.Valkey.Port,
		Password: cfg.Valkey.Password,
		DB:       cfg.Valkey.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init counter store: %w", err)
	}

	users, err := userdir.NewService(userdir.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		_ = storeSvc.Close()
		return nil, fmt.Errorf("failed to init user directory: %w", err)
	}

	settlement := watch.NewSettlement(storeSvc, logger)
	tracker := watch.NewTracker(storeSvc, settlement, logger)
	reporter := stats.NewReporter(storeSvc, logger)
	collector := system.NewCollector()
	sessions := server.NewSessionStore(storeSvc, logger)

	apiHandler := server.NewAPIHandler(tracker, reporter, users, collector, logger)
	authHandler := server.NewAuthHandler(cfg.Server, sessions, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Store:       storeSvc,
		Users:       users,
		Settlement:  settlement,
		Tracker:     tracker,
		Reporter:    reporter,
		Collector:   collector,
		Sessions:    sessions,
		APIHandler:  apiHandler,
		AuthHandler: authHandler,
		cleanup: func() {
			if err := users.Close(); err != nil {
				logger.Warn("user directory close failed", slog.Any("error", err))
			}
			if err := storeSvc.Close(); err != nil {
				logger.Warn("counter store close failed", slog.Any("error", err))
			}
		},
	}, nil
}
