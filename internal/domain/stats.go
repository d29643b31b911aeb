package domain

import "time"

// UserStats: 사용자별 누적 시청 통계. 정산 시점에 lazy 생성되며 TTL 없이 유지된다.
type UserStats struct {
	TotalWatchTime int64     `json:"total_watch_time"` // seconds
	TotalSessions  int64     `json:"total_sessions"`
	LastWatchTime  time.Time `json:"last_watch_time"`
}

// DailyStats: UTC 일자별 전역 통계. 마지막 갱신으로부터 7일 후 TTL로 소멸한다.
type DailyStats struct {
	Date      string    `json:"date"` // YYYY-MM-DD (UTC)
	WatchTime int64     `json:"watch_time"`
	Sessions  int64     `json:"sessions"`
	Users     StringSet `json:"users"`
}

// ChannelStats: 채널별 누적 통계. TTL 없이 유지된다.
type ChannelStats struct {
	ChannelID      string    `json:"channel_id"`
	ChannelName    string    `json:"channel_name"`
	ChannelGroup   string    `json:"channel_group,omitempty"`
	TotalWatchTime int64     `json:"total_watch_time"`
	TotalSessions  int64     `json:"total_sessions"`
	Users          StringSet `json:"users"`
}
