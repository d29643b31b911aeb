package stats

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/domain"
	"github.com/fanerrL/lunatv-live-go/internal/service/store"
	"github.com/fanerrL/lunatv-live-go/internal/service/watch"
)

func newTestReporter(t *testing.T) (*Reporter, *watch.Settlement, *store.Service) {
	t.Helper()

	mini := miniredis.RunT(t)
	// miniredis는 client-side caching 핸드셰이크를 지원하지 않는다
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mini.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		t.Fatalf("failed to ping miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := store.NewServiceWithClient(client, logger)

	t.Cleanup(func() {
		_ = svc.Close()
		mini.Close()
	})

	return NewReporter(svc, logger), watch.NewSettlement(svc, logger), svc
}

// settleSession: heartbeats회의 하트비트를 가진 세션 하나를 정산한다.
func settleSession(settlement *watch.Settlement, username, channelID, channelName string, heartbeats int, endTime time.Time) {
	state := domain.WatchState{
		ChannelIdentity: domain.ChannelIdentity{
			ChannelID:   channelID,
			ChannelName: channelName,
			SourceKey:   "iptv-main",
		},
		StartTime:      endTime.Add(-time.Duration(heartbeats) * 30 * time.Second),
		LastHeartbeat:  endTime,
		HeartbeatCount: heartbeats,
	}
	settlement.Settle(context.Background(), username, state, endTime)
}

func TestBuildReportAggregatesUsers(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 10, now) // 300s
	settleSession(settlement, "bob", "cctv5", "CCTV-5", 4, now)    // 120s

	report, err := reporter.BuildReport(ctx, []string{"alice", "bob", "ghost"}, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	// 데이터 없는 사용자는 집계에서 빠진다
	if report.TotalUsers != 2 {
		t.Fatalf("expected 2 users, got %d", report.TotalUsers)
	}
	if report.TotalWatchTime != 420 {
		t.Fatalf("expected total 420s, got %d", report.TotalWatchTime)
	}
	if report.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", report.TotalSessions)
	}

	// 사용자 합과 전역 합이 일치해야 한다
	var sum int64
	for _, user := range report.Users {
		sum += user.TotalWatchTime
	}
	if sum != report.TotalWatchTime {
		t.Fatalf("user sum %d != total %d", sum, report.TotalWatchTime)
	}
}

func TestBuildReportFavoriteChannelsTopFive(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// 채널 7개, 시청 시간이 채널 번호에 비례
	for i := 1; i <= 7; i++ {
		settleSession(settlement, "alice", fmt.Sprintf("ch-%d", i), fmt.Sprintf("Channel %d", i), i, now)
	}

	report, err := reporter.BuildReport(ctx, []string{"alice"}, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}
	if len(report.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(report.Users))
	}

	favorites := report.Users[0].FavoriteChannels
	if len(favorites) != 5 {
		t.Fatalf("expected top 5 favorites, got %d", len(favorites))
	}
	if favorites[0].ChannelID != "ch-7" {
		t.Fatalf("expected ch-7 first, got %s", favorites[0].ChannelID)
	}
	for i := 1; i < len(favorites); i++ {
		if favorites[i].WatchTime > favorites[i-1].WatchTime {
			t.Fatalf("favorites must be sorted descending: %+v", favorites)
		}
	}
}

func TestBuildReportHotChannelsTopTen(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	usernames := []string{"alice", "bob"}
	for i := 1; i <= 12; i++ {
		for _, user := range usernames {
			settleSession(settlement, user, fmt.Sprintf("ch-%02d", i), fmt.Sprintf("Channel %d", i), i, now)
		}
	}

	report, err := reporter.BuildReport(ctx, usernames, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	if len(report.HotChannels) != 10 {
		t.Fatalf("expected top 10 hot channels, got %d", len(report.HotChannels))
	}
	if report.HotChannels[0].ChannelID != "ch-12" {
		t.Fatalf("expected ch-12 hottest, got %s", report.HotChannels[0].ChannelID)
	}
	if report.HotChannels[0].Users != 2 {
		t.Fatalf("expected 2 distinct watchers, got %d", report.HotChannels[0].Users)
	}
}

func TestBuildReportTieBreakIsStable(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// 시청 시간이 같은 두 채널. 세션 목록이 최신 우선이라 나중에 정산된 쪽이 앞선다
	settleSession(settlement, "alice", "first", "First", 2, now.Add(-time.Hour))
	settleSession(settlement, "alice", "second", "Second", 2, now)

	report, err := reporter.BuildReport(ctx, []string{"alice"}, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	// 세션 목록은 최신 우선이므로 second가 먼저 등장한다
	if len(report.HotChannels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(report.HotChannels))
	}
	if report.HotChannels[0].ChannelID != "second" {
		t.Fatalf("expected newest-settled channel to win ties, got %s", report.HotChannels[0].ChannelID)
	}
}

func TestBuildReportDailyTrend(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 2, now)                 // 오늘 60s
	settleSession(settlement, "bob", "cctv1", "CCTV-1", 4, now.AddDate(0, 0, -2)) // 이틀 전 120s

	report, err := reporter.BuildReport(ctx, []string{"alice", "bob"}, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	if len(report.DailyTrend) != 7 {
		t.Fatalf("expected 7 trend points, got %d", len(report.DailyTrend))
	}

	today := report.DailyTrend[6]
	if today.Date != now.Format("2006-01-02") {
		t.Fatalf("last point must be today, got %s", today.Date)
	}
	if today.WatchTime != 60 || today.ActiveUsers != 1 {
		t.Fatalf("unexpected today point: %+v", today)
	}

	twoDaysAgo := report.DailyTrend[4]
	if twoDaysAgo.WatchTime != 120 {
		t.Fatalf("unexpected -2d point: %+v", twoDaysAgo)
	}

	// 데이터 없는 날은 0으로 채워진다
	if report.DailyTrend[0].WatchTime != 0 || report.DailyTrend[0].Sessions != 0 {
		t.Fatalf("empty day must be zero: %+v", report.DailyTrend[0])
	}

	if report.TodayActiveUsers != 1 {
		t.Fatalf("expected 1 active user today, got %d", report.TodayActiveUsers)
	}
}

func TestBuildReportUsesCache(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 2, now)

	first, err := reporter.BuildReport(ctx, []string{"alice"}, now, false)
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	// 캐시 TTL 안에서는 새 정산이 리포트에 반영되지 않는다
	settleSession(settlement, "alice", "cctv5", "CCTV-5", 2, now)

	cached, err := reporter.BuildReport(ctx, []string{"alice"}, now, false)
	if err != nil {
		t.Fatalf("cached report failed: %v", err)
	}
	if cached.TotalSessions != first.TotalSessions {
		t.Fatalf("expected cached report, got %d sessions", cached.TotalSessions)
	}

	// forceRefresh는 캐시를 우회한다
	fresh, err := reporter.BuildReport(ctx, []string{"alice"}, now, true)
	if err != nil {
		t.Fatalf("forced report failed: %v", err)
	}
	if fresh.TotalSessions != first.TotalSessions+1 {
		t.Fatalf("expected fresh report with 2 sessions, got %d", fresh.TotalSessions)
	}
}

func TestBuildReportCacheExpires(t *testing.T) {
	reporter, settlement, svc := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 2, now)
	if _, err := reporter.BuildReport(ctx, []string{"alice"}, now, false); err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	found, err := svc.Get(ctx, watch.GlobalStatsKey, &domain.GlobalStats{})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatalf("expected report to be cached")
	}
}

func TestUserDetail(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 2, now)
	settleSession(settlement, "alice", "cctv5", "CCTV-5", 3, now.Add(time.Minute))

	stats, sessions, err := reporter.UserDetail(ctx, "alice")
	if err != nil {
		t.Fatalf("user detail failed: %v", err)
	}
	if stats.TotalSessions != 2 || stats.TotalWatchTime != 150 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(sessions) != 2 || sessions[0].ChannelID != "cctv5" {
		t.Fatalf("expected newest session first, got %+v", sessions)
	}
}

func TestUserDetailUnknownUser(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	stats, sessions, err := reporter.UserDetail(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("user detail failed: %v", err)
	}
	if stats.TotalSessions != 0 || len(sessions) != 0 {
		t.Fatalf("expected empty detail, got %+v / %+v", stats, sessions)
	}
}

func TestListChannelsSortedByWatchTime(t *testing.T) {
	reporter, settlement, _ := newTestReporter(t)
	ctx := context.Background()
	now := time.Now().UTC()

	settleSession(settlement, "alice", "cctv1", "CCTV-1", 2, now) // 60s
	settleSession(settlement, "alice", "cctv5", "CCTV-5", 6, now) // 180s
	settleSession(settlement, "bob", "cctv1", "CCTV-1", 1, now)   // +30s

	channels, err := reporter.ListChannels(ctx)
	if err != nil {
		t.Fatalf("list channels failed: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].ChannelID != "cctv5" || channels[0].TotalWatchTime != 180 {
		t.Fatalf("unexpected first channel: %+v", channels[0])
	}
	if channels[1].TotalWatchTime != 90 || channels[1].Users.Len() != 2 {
		t.Fatalf("unexpected second channel: %+v", channels[1])
	}
}

func TestListChannelsEmpty(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	channels, err := reporter.ListChannels(context.Background())
	if err != nil {
		t.Fatalf("list channels failed: %v", err)
	}
	if len(channels) != 0 {
		t.Fatalf("expected empty list, got %+v", channels)
	}
}
