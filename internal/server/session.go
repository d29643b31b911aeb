package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
)

const sessionKeyPrefix = "session:admin:"

// Session: 관리자 세션 한 건
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore: 카운터 스토어 기반 세션 저장소로 서버 재기동 시에도 세션을 유지한다.
type SessionStore struct {
	store  *store.Service
	logger *slog.Logger
	ttl    time.Duration
}

// NewSessionStore: 새로운 세션 저장소를 생성한다.
func NewSessionStore(store *store.Service, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		store:  store,
		logger: logger,
		ttl:    constants.SessionConfig.ExpiryDuration,
	}
}

// Create: 새 관리자 세션을 만들어 TTL과 함께 스토어에 저장한다.
func (s *SessionStore) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:        generateSessionID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Set(ctx, sessionKeyPrefix+session.ID, session, s.ttl); err != nil {
		s.logger.Error("Failed to store session", slog.String("session_id", truncateSessionID(session.ID)), slog.Any("error", err))
		return nil, err
	}

	s.logger.Debug("Session created", slog.String("session_id", truncateSessionID(session.ID)), slog.Duration("ttl", s.ttl))
	return session, nil
}

// Validate: 세션이 존재하고 만료되지 않았는지 확인한다.
func (s *SessionStore) Validate(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}

	var session Session
	found, err := s.store.Get(ctx, sessionKeyPrefix+sessionID, &session)
	if err != nil || !found {
		return false
	}

	// 스토어 TTL이 있지만 만료 시간 이중 확인
	if time.Now().After(session.ExpiresAt) {
		s.Delete(ctx, sessionID)
		return false
	}

	return true
}

// Delete: 세션을 삭제한다.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) {
	if err := s.store.Del(ctx, sessionKeyPrefix+sessionID); err != nil {
		s.logger.Error("Failed to delete session", slog.String("session_id", truncateSessionID(sessionID)), slog.Any("error", err))
	}
}

func generateSessionID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// truncateSessionID: 세션 ID 앞 8자리만 반환 (로그 보안)
func truncateSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}
