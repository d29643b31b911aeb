package server

import (
	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/service/stats"
	"github.com/fanerrL/lunatv-live-go/internal/service/system"
	"github.com/fanerrL/lunatv-live-go/internal/service/userdir"
	"github.com/fanerrL/lunatv-live-go/internal/service/watch"
)

// APIHandler: 시청 통계 API 요청을 처리하는 핸들러.
// 핸들러 메서드는 도메인별 파일로 분리됨:
//   - api_watch.go: 하트비트/시청 종료 수신
//   - api_stats.go: 전역 리포트, 사용자/채널 통계, 시스템 스탯 스트리밍
type APIHandler struct {
	tracker  *watch.Tracker
	reporter *stats.Reporter
	users    *userdir.Service
	sysStats *system.Collector
	logger   *slog.Logger
}

// NewAPIHandler: 새로운 API 핸들러를 생성합니다.
func NewAPIHandler(
	tracker *watch.Tracker,
	reporter *stats.Reporter,
	users *userdir.Service,
	sysStats *system.Collector,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		tracker:  tracker,
		reporter: reporter,
		users:    users,
		sysStats: sysStats,
		logger:   logger,
	}
}
