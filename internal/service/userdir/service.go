package userdir

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL 드라이버 등록
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
)

// User: 등록된 사용자 계정. 리포터가 스캔할 사용자 목록의 원천이다.
// 이 서비스는 디렉토리 조회만 담당하며 인증/권한은 외부 컴포넌트 소관이다.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:64;not null"`
	Role      string `gorm:"size:16;default:user"`
	CreatedAt time.Time
}

// TableName 는 동작을 수행한다.
func (User) TableName() string {
	return "users"
}

// Service: PostgreSQL 기반 사용자 디렉토리
type Service struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// Config: PostgreSQL 접속 정보(Host, Port, User, Password, Database)를 담는 설정 구조체
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// NewService: 주어진 설정으로 PostgreSQL 연결을 수립하고 디렉토리 서비스를 초기화한다.
// 연결 풀 설정 및 초기 헬스 체크(Ping)를 수행하며, GORM 인스턴스도 함께 초기화한다.
func NewService(cfg Config, logger *slog.Logger) (*Service, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout.DatabasePing)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	svc := &Service{
		db:     db,
		gormDB: gormDB,
		logger: logger,
	}

	if err := svc.gormDB.AutoMigrate(&User{}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	return svc, nil
}

// NewServiceWithDB: 이미 열린 GORM 인스턴스로 디렉토리 서비스를 만든다. (테스트용)
func NewServiceWithDB(gormDB *gorm.DB, logger *slog.Logger) (*Service, error) {
	if err := gormDB.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}
	return &Service{
		gormDB: gormDB,
		logger: logger,
	}, nil
}

// ListUsernames: 등록된 모든 사용자 이름을 가입 순서대로 반환한다.
func (s *Service) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := s.gormDB.WithContext(ctx).
		Model(&User{}).
		Order("id").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	return usernames, nil
}

// Exists: 사용자 이름이 등록되어 있는지 확인한다.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.gormDB.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// Close: 데이터베이스 연결을 종료한다.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close postgres: %w", err)
	}
	s.logger.Info("PostgreSQL disconnected")
	return nil
}
