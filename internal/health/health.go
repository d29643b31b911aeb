// Package health: 시청 통계 서버의 상태 정보
package health

import (
	"runtime"
	"sync"
	"time"
)

const serviceName = "lunatv-live"

var (
	startTime time.Time
	version   = "dev"
	initOnce  sync.Once
)

// Init: 서버 기동 시 1회 호출하여 버전과 기동 시각을 고정한다.
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string    `json:"status"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	StartedAt  time.Time `json:"started_at"`
	Uptime     string    `json:"uptime"`
	Goroutines int       `json:"goroutines"`
}

// Get: 현재 상태 반환
func Get() Response {
	return Response{
		Status:     "ok",
		Service:    serviceName,
		Version:    version,
		StartedAt:  startTime,
		Uptime:     formatDuration(time.Since(startTime)),
		Goroutines: runtime.NumGoroutine(),
	}
}

// GetVersion: 현재 버전 반환
func GetVersion() string {
	return version
}

// GetUptime: 기동 후 경과 시간을 포맷팅된 문자열로 반환
func GetUptime() string {
	return formatDuration(time.Since(startTime))
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
