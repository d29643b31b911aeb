package domain

import (
	"time"

	"github.com/fanerrL/lunatv-live-go/internal/util"
	"github.com/fanerrL/lunatv-live-go/pkg/errors"
)

// ChannelIdentity: 시청 중인 채널과 그 채널이 속한 콘텐츠 소스의 식별 정보
type ChannelIdentity struct {
	ChannelID    string `json:"channel_id"`
	ChannelName  string `json:"channel_name"`
	ChannelGroup string `json:"channel_group,omitempty"`
	ChannelLogo  string `json:"channel_logo,omitempty"`
	SourceKey    string `json:"source_key"`
	SourceName   string `json:"source_name,omitempty"`
}

// Validate: 필수 식별 필드(채널 ID, 채널 이름, 소스 키)가 채워져 있는지 검증한다.
func (c ChannelIdentity) Validate() error {
	if util.TrimSpace(c.ChannelID) == "" {
		return errors.NewValidationError("channel id is required", "channel_id")
	}
	if util.TrimSpace(c.ChannelName) == "" {
		return errors.NewValidationError("channel name is required", "channel_name")
	}
	if util.TrimSpace(c.SourceKey) == "" {
		return errors.NewValidationError("source key is required", "source_key")
	}
	return nil
}

// SameChannel: 두 식별 정보가 같은 채널을 가리키는지 판별한다.
// 같은 채널이라도 소스가 바뀌면 채널 전환으로 취급한다.
func (c ChannelIdentity) SameChannel(other ChannelIdentity) bool {
	return c.ChannelID == other.ChannelID && c.SourceKey == other.SourceKey
}

// WatchState: (사용자, 클라이언트 탭)별로 하나만 존재하는 진행 중 시청 상태.
// 하트비트가 멈추면 스토어 TTL에 의해 자동으로 사라진다.
type WatchState struct {
	ChannelIdentity
	StartTime      time.Time `json:"start_time"`
	LastHeartbeat  time.Time `json:"last_heartbeat"`
	HeartbeatCount int       `json:"heartbeat_count"`
}

// WatchSession: 정산이 끝난 불변 시청 세션 기록
type WatchSession struct {
	ChannelIdentity
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       int64     `json:"duration"` // seconds
	HeartbeatCount int       `json:"heartbeat_count"`
}
