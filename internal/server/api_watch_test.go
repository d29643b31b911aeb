package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/valkey-io/valkey-go"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/domain"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/service/watch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*store.Service, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	// miniredis는 client-side caching 핸드셰이크를 지원하지 않는다
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mini.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		t.Fatalf("failed to ping miniredis: %v", err)
	}

	svc := store.NewServiceWithClient(client, testLogger())

	t.Cleanup(func() {
		_ = svc.Close()
		mini.Close()
	})

	return svc, mini
}

func newWatchTestRouter(t *testing.T) (*gin.Engine, *store.Service) {
	t.Helper()

	svc, _ := newTestStore(t)
	logger := testLogger()
	settlement := watch.NewSettlement(svc, logger)
	tracker := watch.NewTracker(svc, settlement, logger)
	handler := NewAPIHandler(tracker, nil, nil, nil, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/live/heartbeat", handler.Heartbeat)
	router.POST("/api/live/end", handler.EndWatch)
	return router, svc
}

const heartbeatBody = `{
	"username": "alice",
	"session_tag": "tab-1",
	"channel": {
		"channel_id": "cctv1",
		"channel_name": "CCTV-1",
		"source_key": "iptv-main"
	}
}`

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHeartbeatEndpoint(t *testing.T) {
	router, svc := newWatchTestRouter(t)

	w := postJSON(router, "/api/live/heartbeat", heartbeatBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var state domain.WatchState
	found, err := svc.Get(context.Background(), watch.WatchingKey("alice", "tab-1"), &state)
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}
	if !found || state.HeartbeatCount != 1 {
		t.Fatalf("expected fresh watch state, got %+v", state)
	}
}

func TestHeartbeatEndpointRejectsMalformedBody(t *testing.T) {
	router, _ := newWatchTestRouter(t)

	w := postJSON(router, "/api/live/heartbeat", `{"username": "alice"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHeartbeatEndpointRejectsIncompleteChannel(t *testing.T) {
	router, _ := newWatchTestRouter(t)

	body := `{"username": "alice", "session_tag": "tab-1", "channel": {"channel_id": "cctv1"}}`
	w := postJSON(router, "/api/live/heartbeat", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEndWatchEndpoint(t *testing.T) {
	router, svc := newWatchTestRouter(t)

	if w := postJSON(router, "/api/live/heartbeat", heartbeatBody); w.Code != http.StatusOK {
		t.Fatalf("heartbeat failed: %d", w.Code)
	}
	w := postJSON(router, "/api/live/end", heartbeatBody)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	found, err := svc.Get(context.Background(), watch.WatchingKey("alice", "tab-1"), &domain.WatchState{})
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}
	if found {
		t.Fatalf("expected watch state to be cleared")
	}
}

func TestEndWatchEndpointIdempotent(t *testing.T) {
	router, _ := newWatchTestRouter(t)

	// 상태가 없어도 sendBeacon 호출은 성공으로 처리한다
	w := postJSON(router, "/api/live/end", heartbeatBody)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for absent state, got %d", w.Code)
	}
}
