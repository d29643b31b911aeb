package health

import "testing"

func TestInitAndGet(t *testing.T) {
	Init("2.0.0-test")

	resp := Get()
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %s", resp.Status)
	}
	if resp.Service != "lunatv-live" {
		t.Fatalf("expected service lunatv-live, got %s", resp.Service)
	}
	if resp.Version != "2.0.0-test" {
		t.Fatalf("expected version 2.0.0-test, got %s", resp.Version)
	}
	if resp.StartedAt.IsZero() {
		t.Fatalf("started_at must be set after init")
	}
	if resp.Goroutines <= 0 {
		t.Fatalf("goroutine count must be positive")
	}

	// Init은 1회만 적용된다
	Init("9.9.9")
	if GetVersion() != "2.0.0-test" {
		t.Fatalf("version must not change after first init")
	}
}
