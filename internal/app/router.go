package app

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/server"
)

// NewRouter: 시청 기록 API를 서빙하는 Gin 라우터를 설정합니다.
// 플레이어(하트비트)와 Admin Dashboard에서 사용됩니다.
func NewRouter(
	ctx context.Context,
	logger *slog.Logger,
	apiHandler *server.APIHandler,
	authHandler *server.AuthHandler,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(constants.ServerConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(server.LoggerMiddleware(ctx, logger,
		"/health",
		"/api/live/heartbeat", // 플레이어 하트비트 (30초 간격 고빈도)
	))
	router.Use(cors.New(newCORSConfig()))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, apiHandler, authHandler)

	return router, nil
}

func newCORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = constants.CORSConfig.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = constants.CORSConfig.AllowMethods
	corsConfig.AllowHeaders = constants.CORSConfig.AllowHeaders
	return corsConfig
}

func registerRoutes(router *gin.Engine, apiHandler *server.APIHandler, authHandler *server.AuthHandler) {
	// Health check 엔드포인트 (버전/uptime 포함)
	router.GET("/health", apiHandler.GetHealth)

	// 시청 기록 수집 API (플레이어에서 호출, 세션 인증 없음)
	liveAPI := router.Group("/api/live")
	liveAPI.Use(server.RateLimitMiddleware(server.NewClientRateLimiter(
		constants.RateLimitConfig.HeartbeatPerSecond,
		constants.RateLimitConfig.HeartbeatBurst,
	)))
	liveAPI.POST("/heartbeat", apiHandler.Heartbeat)
	liveAPI.POST("/end", apiHandler.EndWatch)

	// Session 기반 관리자 인증 API
	authAPI := router.Group("/api/admin")
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/logout", authHandler.Logout)

	// 관리자 통계 API (Admin Dashboard에서 사용)
	adminAPI := router.Group("/api/admin/live")
	adminAPI.Use(authHandler.RequireSession())

	adminAPI.GET("/stats", apiHandler.GetReport)
	adminAPI.GET("/users/:username", apiHandler.GetUserDetail)
	adminAPI.GET("/channels", apiHandler.ListChannels)
	adminAPI.GET("/system", apiHandler.StreamSystemStats)
}
