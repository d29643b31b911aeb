package userdir

import (
	"context"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"log/slog"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewServiceWithDB(gormDB, logger)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func seedUsers(t *testing.T, svc *Service, usernames ...string) {
	t.Helper()
	for _, name := range usernames {
		if err := svc.gormDB.Create(&User{Username: name}).Error; err != nil {
			t.Fatalf("failed to seed user %s: %v", name, err)
		}
	}
}

func TestListUsernamesEmpty(t *testing.T) {
	svc := newTestService(t)

	usernames, err := svc.ListUsernames(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(usernames) != 0 {
		t.Fatalf("expected empty list, got %v", usernames)
	}
}

func TestListUsernamesOrderedByRegistration(t *testing.T) {
	svc := newTestService(t)
	seedUsers(t, svc, "charlie", "alice", "bob")

	usernames, err := svc.ListUsernames(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	want := []string{"charlie", "alice", "bob"}
	if len(usernames) != len(want) {
		t.Fatalf("expected %d users, got %d", len(want), len(usernames))
	}
	for i, name := range want {
		if usernames[i] != name {
			t.Fatalf("expected registration order %v, got %v", want, usernames)
		}
	}
}

func TestExists(t *testing.T) {
	svc := newTestService(t)
	seedUsers(t, svc, "alice")

	found, err := svc.Exists(context.Background(), "alice")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !found {
		t.Fatalf("expected alice to exist")
	}

	found, err = svc.Exists(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if found {
		t.Fatalf("expected ghost to be absent")
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	svc := newTestService(t)
	seedUsers(t, svc, "alice")

	if err := svc.gormDB.Create(&User{Username: "alice"}).Error; err == nil {
		t.Fatalf("expected unique index violation")
	}
}

func TestCloseWithoutRawConnection(t *testing.T) {
	svc := newTestService(t)

	// 테스트 생성 경로에는 raw *sql.DB가 없으므로 no-op이어야 한다
	if err := svc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}
