package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/domain"
	apperrors "github.com/fanerrL/lunatv-live-go/pkg/errors"
)

// heartbeatRequest: 하트비트/시청 종료 공통 요청 본문
type heartbeatRequest struct {
	Username   string                 `json:"username" binding:"required"`
	SessionTag string                 `json:"session_tag" binding:"required"`
	Channel    domain.ChannelIdentity `json:"channel"`
}

// Heartbeat: 하트비트 한 건을 수신합니다. 채널 전환 정산은 트래커가 내부에서 처리한다.
func (h *APIHandler) Heartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid request body",
		})
		return
	}

	ctx, cancel := contextWithTimeout(c, constants.RequestTimeout.Heartbeat)
	defer cancel()

	if err := h.tracker.RecordHeartbeat(ctx, req.Username, req.SessionTag, req.Channel, time.Now()); err != nil {
		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": vErr.Error(),
			})
			return
		}

		h.logger.Error("Heartbeat processing failed",
			slog.String("username", req.Username),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "heartbeat processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EndWatch: 명시적 시청 종료를 수신합니다. navigator.sendBeacon으로도 호출되므로
// 상태가 없을 때도(이미 만료) 성공으로 응답한다.
func (h *APIHandler) EndWatch(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid request body",
		})
		return
	}

	ctx, cancel := contextWithTimeout(c, constants.RequestTimeout.Heartbeat)
	defer cancel()

	if err := h.tracker.EndWatch(ctx, req.Username, req.SessionTag, time.Now()); err != nil {
		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": vErr.Error(),
			})
			return
		}

		h.logger.Error("End watch processing failed",
			slog.String("username", req.Username),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "end watch processing failed",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
