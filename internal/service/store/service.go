package store

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/util"
	"github.com/fanerrL/lunatv-live-go/pkg/errors"
)

// Service: Valkey(Redis) 클라이언트를 래핑한 카운터 스토어.
// 시청 상태/세션/집계 뷰의 유일한 영속 계층이며, 키 단위 TTL과 Set 연산을 지원한다.
type Service struct {
	client    valkey.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

// Config: Valkey 연결 설정을 담는 구조체
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewStoreService: 새로운 Valkey 스토어 인스턴스를 생성하고 연결을 수립한다.
func NewStoreService(cfg Config, logger *slog.Logger) (*Service, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ConnWriteTimeout:  constants.ValkeyConfig.ConnWriteTimeout,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("failed to create store client", "init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	// Ping 테스트
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("failed to connect to store", "ping", "", err)
	}

	logger.Info("Counter store connected",
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		slog.Int("db", cfg.DB),
		slog.Int("pool_size", constants.ValkeyConfig.BlockingPoolSize),
	)

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

// NewServiceWithClient: 이미 연결된 클라이언트로 스토어를 만든다. (테스트용)
// 테스트 클라이언트는 DisableCache/ForceSingleClient 옵션으로 만들어야 한다.
func NewServiceWithClient(client valkey.Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Get: 키에 해당하는 값을 조회하고, 결과를 dest 인터페이스에 언마샬링한다.
// 키가 없으면 (false, nil)을 반환하고 dest는 건드리지 않는다.
func (s *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if util.IsValkeyNil(resp.Error()) {
		return false, nil
	}
	if resp.Error() != nil {
		s.logger.Error("Store get operation failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("get failed", "get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		s.logger.Error("Store value conversion failed", slog.String("key", key), slog.Any("error", err))
		return false, errors.NewCacheError("conversion failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			s.logger.Error("Store value unmarshal failed", slog.String("key", key), slog.Any("error", err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

// MGet: 여러 키를 파이프라이닝으로 한 번에 조회한다. 없는 키는 결과에서 빠진다.
func (s *Service) MGet(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return make(map[string]string), nil
	}

	resp := s.client.Do(ctx, s.client.B().Mget().Key(keys...).Build())
	if resp.Error() != nil {
		s.logger.Error("Store mget failed", slog.Int("keys", len(keys)), slog.Any("error", resp.Error()))
		return nil, errors.NewCacheError("mget failed", "mget", fmt.Sprintf("%d keys", len(keys)), resp.Error())
	}

	values, err := resp.AsStrSlice()
	if err != nil {
		return nil, errors.NewCacheError("mget conversion failed", "mget", "", err)
	}

	result := make(map[string]string, len(keys))
	for i, key := range keys {
		if i < len(values) && values[i] != "" {
			result[key] = values[i]
		}
	}

	return result, nil
}

// Set: 값을 JSON으로 마샬링하여 키에 저장한다. ttl이 0보다 크면 만료를 설정한다.
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	var cmd valkey.Completed
	if ttl > 0 {
		cmd = s.client.B().Set().Key(key).Value(string(jsonData)).ExSeconds(int64(ttl.Seconds())).Build()
	} else {
		cmd = s.client.B().Set().Key(key).Value(string(jsonData)).Build()
	}

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		s.logger.Error("Store set failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

// Del: 지정된 키를 삭제한다.
func (s *Service) Del(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		s.logger.Error("Store delete failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

// SAdd: Set 자료구조에 멤버들을 추가한다.
func (s *Service) SAdd(ctx context.Context, key string, members []string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	resp := s.client.Do(ctx, s.client.B().Sadd().Key(key).Member(members...).Build())
	if resp.Error() != nil {
		s.logger.Error("Store sadd failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return 0, errors.NewCacheError("sadd failed", "sadd", key, resp.Error())
	}

	added, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("sadd conversion failed", "sadd", key, err)
	}

	return added, nil
}

// SMembers: Set의 모든 멤버를 조회한다.
func (s *Service) SMembers(ctx context.Context, key string) ([]string, error) {
	resp := s.client.Do(ctx, s.client.B().Smembers().Key(key).Build())
	if resp.Error() != nil {
		s.logger.Error("Store smembers failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return []string{}, errors.NewCacheError("smembers failed", "smembers", key, resp.Error())
	}

	members, err := resp.AsStrSlice()
	if err != nil {
		return []string{}, errors.NewCacheError("smembers conversion failed", "smembers", key, err)
	}

	return members, nil
}

// Close: 스토어 연결을 안전하게 종료한다.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		if s.client == nil {
			return
		}

		s.client.Close()
		s.logger.Info("Counter store disconnected")
	})

	return nil
}

// IsConnected: 스토어와 연결되어 있는지(PING 응답 여부) 확인한다.
func (s *Service) IsConnected(ctx context.Context) bool {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error() == nil
}
