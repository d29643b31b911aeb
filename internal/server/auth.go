package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/config"
	"github.com/fanerrL/lunatv-live-go/internal/constants"
)

// AuthHandler: 관리자 로그인/로그아웃과 세션 검증을 처리한다.
type AuthHandler struct {
	cfg      config.ServerConfig
	sessions *SessionStore
	limiter  *ClientRateLimiter
	logger   *slog.Logger
}

// NewAuthHandler: 새로운 인증 핸들러를 생성한다.
func NewAuthHandler(cfg config.ServerConfig, sessions *SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		sessions: sessions,
		// 로그인 시도는 분당 수 회면 충분하다
		limiter: NewClientRateLimiter(0.2, 5),
		logger:  logger,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login: 관리자 자격을 검증하고 세션 쿠키를 발급한다.
func (a *AuthHandler) Login(c *gin.Context) {
	if !a.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"status":  "error",
			"message": "too many login attempts",
		})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid request body",
		})
		return
	}

	if a.cfg.AdminPassHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "admin login not configured",
		})
		return
	}

	// 사용자명은 constant-time 비교, 비밀번호는 bcrypt 비교
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.cfg.AdminUser)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.cfg.AdminPassHash), []byte(req.Password))
	if !userOK || passErr != nil {
		a.logger.Warn("Admin login failed", slog.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "invalid credentials",
		})
		return
	}

	session, err := a.sessions.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to create session",
		})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.SessionConfig.CookieName, session.ID,
		int(constants.SessionConfig.ExpiryDuration.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout: 세션을 삭제하고 쿠키를 만료시킨다.
func (a *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(constants.SessionConfig.CookieName); err == nil && sessionID != "" {
		a.sessions.Delete(c.Request.Context(), sessionID)
	}

	c.SetCookie(constants.SessionConfig.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireSession: 유효한 관리자 세션 쿠키를 요구하는 미들웨어를 반환한다.
func (a *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(constants.SessionConfig.CookieName)
		if err != nil || !a.sessions.Validate(c.Request.Context(), sessionID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "authentication required",
			})
			return
		}

		c.Next()
	}
}
