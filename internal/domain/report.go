package domain

import "time"

// ChannelRank: 리포트에 포함되는 채널 랭킹 한 항목 (시청 시간 내림차순)
type ChannelRank struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	WatchTime   int64  `json:"watch_time"`
	Sessions    int64  `json:"sessions"`
	Users       int    `json:"users,omitempty"` // 전역 랭킹에서만 사용 (시청자 수)
}

// UserSummary: 리포트에 포함되는 사용자별 요약
type UserSummary struct {
	Username         string        `json:"username"`
	TotalWatchTime   int64         `json:"total_watch_time"`
	TotalSessions    int64         `json:"total_sessions"`
	LastWatchTime    time.Time     `json:"last_watch_time"`
	FavoriteChannels []ChannelRank `json:"favorite_channels"`
}

// DailyTrendPoint: 일별 추이의 한 지점. 데이터가 없는 날은 0으로 채워진다.
type DailyTrendPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD (UTC)
	WatchTime   int64  `json:"watch_time"`
	Sessions    int64  `json:"sessions"`
	ActiveUsers int    `json:"active_users"`
}

// GlobalStats: 전체 사용자/채널을 스캔하여 만든 통합 리포트
type GlobalStats struct {
	TotalUsers       int               `json:"total_users"`
	TotalWatchTime   int64             `json:"total_watch_time"`
	TotalSessions    int64             `json:"total_sessions"`
	TodayActiveUsers int               `json:"today_active_users"`
	Users            []UserSummary     `json:"users"`
	HotChannels      []ChannelRank     `json:"hot_channels"`
	DailyTrend       []DailyTrendPoint `json:"daily_trend"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
