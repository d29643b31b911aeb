package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/util"
)

// Config: 시청 통계 서비스의 전체 동작에 필요한 설정을 담는 구조체
type Config struct {
	Server   ServerConfig
	Valkey   ValkeyConfig
	Postgres PostgresConfig
	Logging  LoggingConfig
	Version  string
}

// ServerConfig: HTTP API 서버 및 관리자 인증 설정
type ServerConfig struct {
	Port          int
	AdminUser     string
	AdminPassHash string // bcrypt 해시
}

// ValkeyConfig: 카운터 스토어(Valkey) 접속 설정
type ValkeyConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig: 사용자 디렉토리(PostgreSQL) 접속 설정
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// LoggingConfig: 로그 레벨 및 파일 로테이션 설정
type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load: .env 파일과 환경 변수에서 설정을 읽어 검증까지 수행한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnvInt("SERVER_PORT", 30002),
			AdminUser:     getEnv("ADMIN_USER", "admin"),
			AdminPassHash: getEnv("ADMIN_PASS_HASH", ""),
		},
		Valkey: ValkeyConfig{
			Host:     getEnv("CACHE_HOST", "localhost"),
			Port:     getEnvInt("CACHE_PORT", 6379),
			Password: getEnv("CACHE_PASSWORD", ""),
			DB:       getEnvInt("CACHE_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", constants.DatabaseDefaults.Host),
			Port:     getEnvInt("POSTGRES_PORT", constants.DatabaseDefaults.Port),
			User:     getEnv("POSTGRES_USER", constants.DatabaseDefaults.User),
			Password: getEnv("POSTGRES_PASSWORD", constants.DatabaseDefaults.Password),
			Database: getEnv("POSTGRES_DB", constants.DatabaseDefaults.Database),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Dir:        getEnv("LOG_DIR", "logs"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Version: util.TrimSpace(getEnv("APP_VERSION", "1.0.0-go")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate: 필수 설정값이 누락되지 않았는지 검증한다.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Valkey.Host == "" {
		return fmt.Errorf("cache host must not be empty")
	}
	if c.Valkey.Port <= 0 || c.Valkey.Port > 65535 {
		return fmt.Errorf("invalid cache port: %d", c.Valkey.Port)
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres host must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
