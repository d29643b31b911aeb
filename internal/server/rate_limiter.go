package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
)

// ClientRateLimiter: 클라이언트 키(IP 등)별 토큰 버킷 속도 제한기.
// 하트비트 수신과 로그인 시도 양쪽에 쓰이며, 유휴 항목은 주기적으로 정리된다.
type ClientRateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter: 초당 rps, 버스트 burst의 제한기를 생성하고 정리 고루틴을 시작한다.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}

	go rl.cleanupLoop()

	return rl
}

// Allow: 주어진 키의 요청 허용 여부를 반환한다.
func (rl *ClientRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rl.rps, rl.burst),
		}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

func (rl *ClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(constants.RateLimitConfig.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-constants.RateLimitConfig.EntryIdleTTL)

		rl.mu.Lock()
		for key, entry := range rl.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.limiters, key)
			}
		}
		rl.mu.Unlock()
	}
}
