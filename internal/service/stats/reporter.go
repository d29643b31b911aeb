package stats

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/domain"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/service/watch"
	"github.com/fanerrL/lunatv-live-go/internal/util"
	"github.com/fanerrL/lunatv-live-go/pkg/errors"
)

// Reporter: 집계 뷰를 스캔하여 통합 리포트를 만드는 읽기 전용 컴포넌트.
// 결과는 스토어에 5분 TTL로 캐시되며, forceRefresh로 우회할 수 있다.
// O(사용자 x 사용자당 세션) 스캔이지만 세션 목록이 100개로 제한되므로 허용 범위다.
type Reporter struct {
	store  *store.Service
	logger *slog.Logger
	group  singleflight.Group
}

// NewReporter: 새로운 리포터를 생성한다.
func NewReporter(store *store.Service, logger *slog.Logger) *Reporter {
	return &Reporter{
		store:  store,
		logger: logger,
	}
}

// userScan: 사용자 한 명의 집계 뷰 조회 결과
type userScan struct {
	username string
	stats    domain.UserStats
	hasStats bool
	sessions []domain.WatchSession
	err      error
}

// BuildReport: 디렉토리의 모든 사용자를 스캔하여 GlobalStats를 만든다.
// forceRefresh가 false면 캐시된 리포트를 먼저 확인하고, 동시 재계산은
// singleflight로 합쳐진다.
func (r *Reporter) BuildReport(ctx context.Context, usernames []string, now time.Time, forceRefresh bool) (*domain.GlobalStats, error) {
	if !forceRefresh {
		var cached domain.GlobalStats
		found, err := r.store.Get(ctx, watch.GlobalStatsKey, &cached)
		if err != nil {
			r.logger.Warn("Failed to read cached report, rebuilding", slog.Any("error", err))
		} else if found {
			return &cached, nil
		}
	}

	result, err, _ := r.group.Do(watch.GlobalStatsKey, func() (any, error) {
		report, err := r.build(ctx, usernames, now)
		if err != nil {
			return nil, err
		}

		if err := r.store.Set(ctx, watch.GlobalStatsKey, report, constants.CacheTTL.GlobalStats); err != nil {
			r.logger.Warn("Failed to cache report", slog.Any("error", err))
		}
		return report, nil
	})
	if err != nil {
		return nil, errors.NewServiceError("failed to build report", "stats", "build_report", err)
	}

	return result.(*domain.GlobalStats), nil
}

func (r *Reporter) build(ctx context.Context, usernames []string, now time.Time) (*domain.GlobalStats, error) {
	scans := r.scanUsers(ctx, usernames)

	report := &domain.GlobalStats{
		Users:       make([]domain.UserSummary, 0, len(scans)),
		GeneratedAt: now,
	}

	// 전역 채널 누적. 첫 등장 순서를 유지해 동률 시 안정적인 순위를 보장한다.
	global := newChannelAccumulator()

	// 스캔은 병렬이지만 합산은 디렉토리 순서대로 진행해 결과를 결정적으로 만든다
	for _, scan := range scans {
		if scan.err != nil {
			r.logger.Warn("Skipping user in report", slog.String("username", scan.username), slog.Any("error", scan.err))
			continue
		}
		if !scan.hasStats && len(scan.sessions) == 0 {
			continue
		}

		favorites := newChannelAccumulator()
		for _, session := range scan.sessions {
			favorites.add(session, "")
			global.add(session, scan.username)
		}

		report.Users = append(report.Users, domain.UserSummary{
			Username:         scan.username,
			TotalWatchTime:   scan.stats.TotalWatchTime,
			TotalSessions:    scan.stats.TotalSessions,
			LastWatchTime:    scan.stats.LastWatchTime,
			FavoriteChannels: favorites.topN(constants.ReporterConfig.TopFavoriteChannels),
		})
		report.TotalWatchTime += scan.stats.TotalWatchTime
		report.TotalSessions += scan.stats.TotalSessions
	}
	report.TotalUsers = len(report.Users)
	report.HotChannels = global.topN(constants.ReporterConfig.TopHotChannels)

	trend, todayActive, err := r.dailyTrend(ctx, now)
	if err != nil {
		return nil, err
	}
	report.DailyTrend = trend
	report.TodayActiveUsers = todayActive

	return report, nil
}

// scanUsers: 사용자별 통계와 세션 목록을 제한된 동시성으로 조회한다.
// 개별 사용자의 스토어 장애는 리포트 전체를 중단시키지 않는다.
func (r *Reporter) scanUsers(ctx context.Context, usernames []string) []*userScan {
	scans := make([]*userScan, len(usernames))

	p := pool.New().WithMaxGoroutines(constants.ReporterConfig.ScanConcurrency)
	for i, username := range usernames {
		p.Go(func() {
			scan := &userScan{username: username}

			found, err := r.store.Get(ctx, watch.UserStatsKey(username), &scan.stats)
			if err != nil {
				scan.err = err
				scans[i] = scan
				return
			}
			scan.hasStats = found

			if _, err := r.store.Get(ctx, watch.SessionsKey(username), &scan.sessions); err != nil {
				scan.err = err
			}
			scans[i] = scan
		})
	}
	p.Wait()

	return scans
}

// dailyTrend: 최근 7일의 일별 통계를 오래된 날짜부터 채운다. 데이터가 없는 날은 0이다.
func (r *Reporter) dailyTrend(ctx context.Context, now time.Time) ([]domain.DailyTrendPoint, int, error) {
	days := util.LastNDayKeys(now, constants.ReporterConfig.TrendDays)

	keys := make([]string, len(days))
	for i, day := range days {
		keys[i] = watch.DailyKey(day)
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, 0, err
	}

	trend := make([]domain.DailyTrendPoint, len(days))
	todayActive := 0
	for i, day := range days {
		trend[i] = domain.DailyTrendPoint{Date: day}

		raw, ok := values[keys[i]]
		if !ok {
			continue
		}

		var stats domain.DailyStats
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			r.logger.Warn("Malformed daily stats, treated as empty", slog.String("day", day), slog.Any("error", err))
			continue
		}

		trend[i].WatchTime = stats.WatchTime
		trend[i].Sessions = stats.Sessions
		trend[i].ActiveUsers = stats.Users.Len()
		if i == len(days)-1 {
			todayActive = stats.Users.Len()
		}
	}

	return trend, todayActive, nil
}

// UserDetail: 관리자 화면용으로 사용자 한 명의 누적 통계와 최근 세션을 조회한다.
func (r *Reporter) UserDetail(ctx context.Context, username string) (domain.UserStats, []domain.WatchSession, error) {
	var stats domain.UserStats
	if _, err := r.store.Get(ctx, watch.UserStatsKey(username), &stats); err != nil {
		return domain.UserStats{}, nil, errors.NewServiceError("failed to load user stats", "stats", "user_detail", err)
	}

	var sessions []domain.WatchSession
	if _, err := r.store.Get(ctx, watch.SessionsKey(username), &sessions); err != nil {
		return domain.UserStats{}, nil, errors.NewServiceError("failed to load sessions", "stats", "user_detail", err)
	}

	return stats, sessions, nil
}

// ListChannels: 채널 레지스트리의 모든 채널 통계를 시청 시간 내림차순으로 반환한다.
func (r *Reporter) ListChannels(ctx context.Context) ([]domain.ChannelStats, error) {
	channelIDs, err := r.store.SMembers(ctx, watch.ChannelRegistryKey)
	if err != nil {
		return nil, errors.NewServiceError("failed to list channels", "stats", "list_channels", err)
	}
	if len(channelIDs) == 0 {
		return []domain.ChannelStats{}, nil
	}

	sort.Strings(channelIDs)
	keys := make([]string, len(channelIDs))
	for i, id := range channelIDs {
		keys[i] = watch.ChannelKey(id)
	}

	values, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, errors.NewServiceError("failed to load channel stats", "stats", "list_channels", err)
	}

	channels := make([]domain.ChannelStats, 0, len(keys))
	for _, key := range keys {
		raw, ok := values[key]
		if !ok {
			continue
		}

		var stats domain.ChannelStats
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			r.logger.Warn("Malformed channel stats, skipped", slog.String("key", key), slog.Any("error", err))
			continue
		}
		channels = append(channels, stats)
	}

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].TotalWatchTime > channels[j].TotalWatchTime
	})

	return channels, nil
}

// channelAccumulator: 세션을 채널별로 접는 누적기. 첫 등장 순서를 기억해
// 시청 시간이 같은 채널끼리는 먼저 나온 쪽이 앞선다.
type channelAccumulator struct {
	order   []string
	entries map[string]*channelEntry
}

type channelEntry struct {
	rank  domain.ChannelRank
	users domain.StringSet
}

func newChannelAccumulator() *channelAccumulator {
	return &channelAccumulator{
		entries: make(map[string]*channelEntry),
	}
}

func (a *channelAccumulator) add(session domain.WatchSession, username string) {
	entry, ok := a.entries[session.ChannelID]
	if !ok {
		entry = &channelEntry{
			rank: domain.ChannelRank{
				ChannelID:   session.ChannelID,
				ChannelName: session.ChannelName,
			},
			users: domain.NewStringSet(),
		}
		a.entries[session.ChannelID] = entry
		a.order = append(a.order, session.ChannelID)
	}

	entry.rank.WatchTime += session.Duration
	entry.rank.Sessions++
	if username != "" {
		entry.users.Add(username)
	}
}

func (a *channelAccumulator) topN(n int) []domain.ChannelRank {
	ranks := make([]domain.ChannelRank, 0, len(a.order))
	for _, id := range a.order {
		entry := a.entries[id]
		rank := entry.rank
		rank.Users = entry.users.Len()
		ranks = append(ranks, rank)
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].WatchTime > ranks[j].WatchTime
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}
