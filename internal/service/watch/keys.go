package watch

// 스토어 키 스킴. 외부 리포팅/마이그레이션 도구와의 호환을 위해 형식을 바꾸면 안 된다.
const (
	// WatchingKeyPrefix: 진행 중 시청 상태 키 접두사 (TTL = 만료 윈도우)
	WatchingKeyPrefix = "live:watching:"
	// SessionsKeyPrefix: 사용자별 최근 세션 목록 키 접두사 (최대 100개, TTL 없음)
	SessionsKeyPrefix = "live:sessions:"
	// UserStatsKeyPrefix: 사용자별 누적 통계 키 접두사 (TTL 없음)
	UserStatsKeyPrefix = "live:stats:"
	// DailyKeyPrefix: UTC 일자별 통계 키 접두사 (TTL 7일)
	DailyKeyPrefix = "live:daily:"
	// ChannelKeyPrefix: 채널별 누적 통계 키 접두사 (TTL 없음)
	ChannelKeyPrefix = "live:channel:"
	// ChannelRegistryKey: 통계가 기록된 모든 채널 ID를 추적하는 Set 키
	ChannelRegistryKey = "live:channels"
	// GlobalStatsKey: 전역 통계 리포트 캐시 키 (TTL 5분)
	GlobalStatsKey = "live:global-stats"
)

// WatchingKey: (사용자, 세션 태그) 쌍의 시청 상태 키를 만든다.
func WatchingKey(username, sessionTag string) string {
	return WatchingKeyPrefix + username + ":" + sessionTag
}

// SessionsKey: 사용자의 세션 목록 키를 만든다.
func SessionsKey(username string) string {
	return SessionsKeyPrefix + username
}

// UserStatsKey: 사용자의 누적 통계 키를 만든다.
func UserStatsKey(username string) string {
	return UserStatsKeyPrefix + username
}

// DailyKey: 일자 키(YYYY-MM-DD)의 일별 통계 키를 만든다.
func DailyKey(day string) string {
	return DailyKeyPrefix + day
}

// ChannelKey: 채널의 누적 통계 키를 만든다.
func ChannelKey(channelID string) string {
	return ChannelKeyPrefix + channelID
}
