package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/health"
)

func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}

// GetReport: 전역 시청 통계 리포트를 반환합니다.
// ?force=true면 캐시를 우회하고 새로 계산한다.
func (h *APIHandler) GetReport(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, constants.RequestTimeout.ReportBuild)
	defer cancel()

	usernames, err := h.users.ListUsernames(ctx)
	if err != nil {
		h.logger.Error("Failed to list users for report", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to load user directory",
		})
		return
	}

	force := c.Query("force") == "true"
	report, err := h.reporter.BuildReport(ctx, usernames, time.Now(), force)
	if err != nil {
		h.logger.Error("Failed to build report", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to build report",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetUserDetail: 사용자 한 명의 누적 통계와 최근 세션 목록을 반환합니다.
func (h *APIHandler) GetUserDetail(c *gin.Context) {
	username := c.Param("username")

	ctx, cancel := contextWithTimeout(c, constants.RequestTimeout.AdminRequest)
	defer cancel()

	exists, err := h.users.Exists(ctx, username)
	if err != nil {
		h.logger.Error("Failed to check user", slog.String("username", username), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to load user",
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "user not found",
		})
		return
	}

	stats, sessions, err := h.reporter.UserDetail(ctx, username)
	if err != nil {
		h.logger.Error("Failed to load user detail", slog.String("username", username), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to load user stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"stats":    stats,
		"sessions": sessions,
	})
}

// ListChannels: 통계가 기록된 모든 채널을 시청 시간 내림차순으로 반환합니다.
func (h *APIHandler) ListChannels(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, constants.RequestTimeout.AdminRequest)
	defer cancel()

	channels, err := h.reporter.ListChannels(ctx)
	if err != nil {
		h.logger.Error("Failed to list channels", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to list channels",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"channels": channels,
	})
}

// GetHealth: 서비스 상태를 반환합니다.
func (h *APIHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, health.Get())
}

// StreamSystemStats: WebSocket을 통해 시스템 리소스 사용량을 실시간 스트리밍합니다.
// 2초마다 CPU/메모리 통계를 전송합니다.
func (h *APIHandler) StreamSystemStats(c *gin.Context) {
	if h.sysStats == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "System stats collector not available",
		})
		return
	}

	// WebSocket 업그레이드
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ctx := c.Request.Context()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	// 최초 1회 즉시 전송
	if stats, err := h.sysStats.GetCurrentStats(ctx); err == nil {
		_ = conn.WriteJSON(stats)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := h.sysStats.GetCurrentStats(ctx)
			if err != nil {
				continue
			}
			if err := conn.WriteJSON(stats); err != nil {
				return
			}
		}
	}
}
