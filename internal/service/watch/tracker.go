package watch

import (
	"context"
	"time"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/domain"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/util"
	"github.com/fanerrL/lunatv-live-go/pkg/errors"
)

// Tracker: (사용자, 클라이언트 탭)별 진행 중 시청 상태를 관리한다.
// 하트비트마다 상태를 생성/갱신하고, 채널 전환이나 명시적 종료 시 정산을 위임한다.
// 하트비트가 만료 윈도우 안에 오지 않으면 스토어 TTL이 상태를 지운다.
// TTL로만 끝난 세션은 정산되지 않고 집계에서 빠진다 - 알려진 정확도 한계.
type Tracker struct {
	store      *store.Service
	settlement *Settlement
	logger     *slog.Logger
}

// NewTracker: 새로운 시청 상태 트래커를 생성한다.
func NewTracker(store *store.Service, settlement *Settlement, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:      store,
		settlement: settlement,
		logger:     logger,
	}
}

// RecordHeartbeat: 하트비트 한 건을 처리한다.
//   - 상태 없음: heartbeatCount=1로 새 상태 생성
//   - 같은 채널: 카운트 증가, TTL 갱신 (sliding expiry)
//   - 다른 채널: 이전 상태를 endTime=now로 정산한 뒤 새 상태 생성
//
// 검증 실패와 스토어 장애만 에러로 반환하며, 정산 실패는 전파하지 않는다.
func (t *Tracker) RecordHeartbeat(ctx context.Context, username, sessionTag string, channel domain.ChannelIdentity, now time.Time) error {
	if util.TrimSpace(username) == "" {
		return errors.NewValidationError("username is required", "username")
	}
	if util.TrimSpace(sessionTag) == "" {
		return errors.NewValidationError("session tag is required", "session_tag")
	}
	if err := channel.Validate(); err != nil {
		return err
	}

	key := WatchingKey(username, sessionTag)

	var state domain.WatchState
	found, err := t.store.Get(ctx, key, &state)
	if err != nil {
		return errors.NewServiceError("failed to load watch state", "watch", "heartbeat", err)
	}

	switch {
	case !found:
		state = newWatchState(channel, now)

	case state.SameChannel(channel):
		state.HeartbeatCount++
		state.LastHeartbeat = now

	default:
		// 채널 전환: 이전 상태를 지금 시각으로 정산하고 새로 시작한다
		t.logger.Debug("Channel switch detected",
			slog.String("username", username),
			slog.String("from", state.ChannelID),
			slog.String("to", channel.ChannelID),
		)
		t.settlement.Settle(ctx, username, state, now)
		state = newWatchState(channel, now)
	}

	if err := t.store.Set(ctx, key, state, constants.WatchConfig.WatchStateTTL); err != nil {
		return errors.NewServiceError("failed to save watch state", "watch", "heartbeat", err)
	}

	return nil
}

// EndWatch: 명시적 시청 종료를 처리한다. 상태가 있으면 endTime=now로 정산하고
// 저장된 상태를 삭제한다. 상태가 없으면(이미 만료 등) no-op이다.
func (t *Tracker) EndWatch(ctx context.Context, username, sessionTag string, now time.Time) error {
	if util.TrimSpace(username) == "" {
		return errors.NewValidationError("username is required", "username")
	}
	if util.TrimSpace(sessionTag) == "" {
		return errors.NewValidationError("session tag is required", "session_tag")
	}

	key := WatchingKey(username, sessionTag)

	var state domain.WatchState
	found, err := t.store.Get(ctx, key, &state)
	if err != nil {
		return errors.NewServiceError("failed to load watch state", "watch", "end", err)
	}
	if !found {
		return nil
	}

	t.settlement.Settle(ctx, username, state, now)

	if err := t.store.Del(ctx, key); err != nil {
		return errors.NewServiceError("failed to delete watch state", "watch", "end", err)
	}

	return nil
}

func newWatchState(channel domain.ChannelIdentity, now time.Time) domain.WatchState {
	return domain.WatchState{
		ChannelIdentity: channel,
		StartTime:       now,
		LastHeartbeat:   now,
		HeartbeatCount:  1,
	}
}
