package watch

import (
	"context"
	"time"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/domain"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/util"
)

// Settlement: 완료된 시청 상태를 불변 세션 기록으로 확정하고 네 가지 집계 뷰
// (세션 목록, 사용자 통계, 일별 통계, 채널 통계)에 반영하는 정산 엔진.
// 정산 실패가 하트비트 처리를 막아서는 안 되므로 모든 에러는 로그 후 삼킨다.
type Settlement struct {
	store  *store.Service
	logger *slog.Logger
}

// NewSettlement: 새로운 정산 엔진을 생성한다.
func NewSettlement(store *store.Service, logger *slog.Logger) *Settlement {
	return &Settlement{
		store:  store,
		logger: logger,
	}
}

// Settle: 시청 상태를 정산한다. 지속 시간은 하트비트 횟수 기반으로 계산하며
// (벽시계 차이가 아님 - 클록 스큐와 클라이언트 전송 지터에 견고), 허용 범위를
// 벗어난 세션은 에러 없이 버린다.
func (se *Settlement) Settle(ctx context.Context, username string, state domain.WatchState, endTime time.Time) {
	duration := int64(state.HeartbeatCount) * int64(constants.WatchConfig.HeartbeatInterval/time.Second)

	minDuration := int64(constants.WatchConfig.MinSessionDuration / time.Second)
	maxDuration := int64(constants.WatchConfig.MaxSessionDuration / time.Second)
	if duration < minDuration || duration > maxDuration {
		se.logger.Debug("Session outside duration bounds, dropped",
			slog.String("username", username),
			slog.String("channel_id", state.ChannelID),
			slog.Int64("duration", duration),
		)
		return
	}

	session := domain.WatchSession{
		ChannelIdentity: state.ChannelIdentity,
		StartTime:       state.StartTime,
		EndTime:         endTime,
		Duration:        duration,
		HeartbeatCount:  state.HeartbeatCount,
	}

	// 네 집계 모두 같은 일자 키와 같은 duration으로 갱신한다. 스토어에 멀티 키
	// 트랜잭션이 없으므로 그룹 원자성은 best-effort이고, 각 갱신은 키 단위
	// read-modify-write로 자체 일관성을 지킨다.
	day := util.DayKey(endTime)
	se.appendSession(ctx, username, session)
	se.updateUserStats(ctx, username, session)
	se.updateDailyStats(ctx, day, username, session)
	se.updateChannelStats(ctx, username, session)

	se.logger.Info("Watch session settled",
		slog.String("username", username),
		slog.String("channel_id", session.ChannelID),
		slog.String("channel_name", util.TruncateString(session.ChannelName, 40)),
		slog.Int64("duration", duration),
		slog.Int("heartbeats", session.HeartbeatCount),
	)
}

// appendSession: 세션을 사용자 목록 맨 앞에 붙이고 최근 100개만 남긴다.
func (se *Settlement) appendSession(ctx context.Context, username string, session domain.WatchSession) {
	key := SessionsKey(username)

	var sessions []domain.WatchSession
	if _, err := se.store.Get(ctx, key, &sessions); err != nil {
		se.logger.Error("Failed to load session list", slog.String("username", username), slog.Any("error", err))
		return
	}

	sessions = append([]domain.WatchSession{session}, sessions...)
	if len(sessions) > constants.WatchConfig.SessionListMax {
		sessions = sessions[:constants.WatchConfig.SessionListMax]
	}

	if err := se.store.Set(ctx, key, sessions, 0); err != nil {
		se.logger.Error("Failed to save session list", slog.String("username", username), slog.Any("error", err))
	}
}

func (se *Settlement) updateUserStats(ctx context.Context, username string, session domain.WatchSession) {
	key := UserStatsKey(username)

	var stats domain.UserStats
	if _, err := se.store.Get(ctx, key, &stats); err != nil {
		se.logger.Error("Failed to load user stats", slog.String("username", username), slog.Any("error", err))
		return
	}

	stats.TotalWatchTime += session.Duration
	stats.TotalSessions++
	stats.LastWatchTime = session.EndTime

	if err := se.store.Set(ctx, key, stats, 0); err != nil {
		se.logger.Error("Failed to save user stats", slog.String("username", username), slog.Any("error", err))
	}
}

func (se *Settlement) updateDailyStats(ctx context.Context, day, username string, session domain.WatchSession) {
	key := DailyKey(day)

	var stats domain.DailyStats
	if _, err := se.store.Get(ctx, key, &stats); err != nil {
		se.logger.Error("Failed to load daily stats", slog.String("day", day), slog.Any("error", err))
		return
	}

	stats.Date = day
	if stats.Users == nil {
		stats.Users = domain.NewStringSet()
	}
	stats.WatchTime += session.Duration
	stats.Sessions++
	stats.Users.Add(username)

	// 쓸 때마다 7일 TTL을 다시 건다 (sliding retention)
	if err := se.store.Set(ctx, key, stats, constants.CacheTTL.DailyStats); err != nil {
		se.logger.Error("Failed to save daily stats", slog.String("day", day), slog.Any("error", err))
	}
}

func (se *Settlement) updateChannelStats(ctx context.Context, username string, session domain.WatchSession) {
	key := ChannelKey(session.ChannelID)

	var stats domain.ChannelStats
	if _, err := se.store.Get(ctx, key, &stats); err != nil {
		se.logger.Error("Failed to load channel stats", slog.String("channel_id", session.ChannelID), slog.Any("error", err))
		return
	}

	// 채널 이름/그룹은 최신 세션 기준으로 갱신한다
	stats.ChannelID = session.ChannelID
	stats.ChannelName = session.ChannelName
	stats.ChannelGroup = session.ChannelGroup
	if stats.Users == nil {
		stats.Users = domain.NewStringSet()
	}
	stats.TotalWatchTime += session.Duration
	stats.TotalSessions++
	stats.Users.Add(username)

	if err := se.store.Set(ctx, key, stats, 0); err != nil {
		se.logger.Error("Failed to save channel stats", slog.String("channel_id", session.ChannelID), slog.Any("error", err))
		return
	}

	if _, err := se.store.SAdd(ctx, ChannelRegistryKey, []string{session.ChannelID}); err != nil {
		se.logger.Warn("Failed to register channel", slog.String("channel_id", session.ChannelID), slog.Any("error", err))
	}
}
