package constants

import "time"

// WatchConfig: 시청 하트비트/세션 정산 관련 설정값 모음
var WatchConfig = struct {
	HeartbeatInterval  time.Duration // 클라이언트 하트비트 주기
	WatchStateTTL      time.Duration // 시청 상태 만료 윈도우 (하트비트 1회 누락 허용)
	MinSessionDuration time.Duration // 이보다 짧은 세션은 버린다
	MaxSessionDuration time.Duration // 이보다 긴 세션은 비정상으로 간주하고 버린다
	SessionListMax     int           // 사용자별 최근 세션 보관 개수
}{
	HeartbeatInterval:  30 * time.Second,
	WatchStateTTL:      60 * time.Second,
	MinSessionDuration: 30 * time.Second,
	MaxSessionDuration: 8 * time.Hour,
	SessionListMax:     100,
}

// CacheTTL: 집계 뷰 및 리포트 캐시의 TTL 모음
var CacheTTL = struct {
	DailyStats  time.Duration // 일별 통계 보관 기간
	GlobalStats time.Duration // 전역 통계 리포트 캐시
}{
	DailyStats:  7 * 24 * time.Hour,
	GlobalStats: 5 * time.Minute,
}

// ReporterConfig: 전역 통계 리포트 생성 관련 설정
var ReporterConfig = struct {
	TopFavoriteChannels int // 사용자별 즐겨보는 채널 랭킹 수
	TopHotChannels      int // 전역 인기 채널 랭킹 수
	TrendDays           int // 일별 추이 일수
	ScanConcurrency     int // 사용자 스캔 동시성
}{
	TopFavoriteChannels: 5,
	TopHotChannels:      10,
	TrendDays:           7,
	ScanConcurrency:     10,
}

// ValkeyConfig: Valkey 클라이언트 설정
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	DialTimeout       time.Duration
	ConnWriteTimeout  time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
}{
	ReadyTimeout:      5 * time.Second,
	DialTimeout:       5 * time.Second,
	ConnWriteTimeout:  10 * time.Second,
	BlockingPoolSize:  100,
	PipelineMultiplex: 4,
}

// DatabaseConfig: PostgreSQL 연결 풀 설정
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    20,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}

// DatabaseDefaults: PostgreSQL 기본 접속 정보
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "lunatv",
	Password: "lunatv",
	Database: "lunatv",
}

// ServerTimeout: HTTP 서버 타임아웃 설정
var ServerTimeout = struct {
	ReadHeader     time.Duration
	Read           time.Duration
	Write          time.Duration
	Idle           time.Duration
	Shutdown       time.Duration
	MaxHeaderBytes int
}{
	ReadHeader:     5 * time.Second,
	Read:           30 * time.Second,
	Write:          30 * time.Second,
	Idle:           120 * time.Second,
	Shutdown:       10 * time.Second,
	MaxHeaderBytes: 1 << 20,
}

// RequestTimeout: 요청 처리별 타임아웃 설정
var RequestTimeout = struct {
	Heartbeat    time.Duration
	AdminRequest time.Duration
	ReportBuild  time.Duration
	DatabasePing time.Duration
}{
	Heartbeat:    5 * time.Second,
	AdminRequest: 10 * time.Second,
	ReportBuild:  30 * time.Second,
	DatabasePing: 5 * time.Second,
}

// RateLimitConfig: 하트비트 수신 속도 제한 설정 (클라이언트 IP 기준)
var RateLimitConfig = struct {
	HeartbeatPerSecond float64
	HeartbeatBurst     int
	CleanupInterval    time.Duration
	EntryIdleTTL       time.Duration
}{
	HeartbeatPerSecond: 2,
	HeartbeatBurst:     5,
	CleanupInterval:    5 * time.Minute,
	EntryIdleTTL:       10 * time.Minute,
}

// SessionConfig: 관리자 세션 설정
var SessionConfig = struct {
	ExpiryDuration time.Duration
	CookieName     string
}{
	ExpiryDuration: 24 * time.Hour,
	CookieName:     "lunatv_admin_session",
}

// ServerConfig: 서버 공통 설정
var ServerConfig = struct {
	TrustedProxies []string
}{
	TrustedProxies: []string{"127.0.0.1"},
}

// CORSConfig 는 CORS 기본 설정이다.
var CORSConfig = struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}{
	AllowOrigins: []string{"http://localhost:5173"},
	AllowMethods: []string{"GET", "POST", "OPTIONS"},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
}

// AppTimeout: 앱 수명주기 타임아웃
var AppTimeout = struct {
	Build time.Duration
}{
	Build: 30 * time.Second,
}
