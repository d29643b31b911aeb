package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestCacheErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewCacheError("get failed", "get", "live:stats:alice", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
	if !strings.Contains(err.Error(), "live:stats:alice") {
		t.Fatalf("error message must include key: %s", err.Error())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("channel id is required", "channel_id")
	if !strings.Contains(err.Error(), "channel_id") {
		t.Fatalf("error message must include field: %s", err.Error())
	}

	bare := &ValidationError{Message: "bad input"}
	if bare.Error() != "bad input" {
		t.Fatalf("unexpected message: %s", bare.Error())
	}
}

func TestServiceErrorChain(t *testing.T) {
	cause := NewCacheError("set failed", "set", "live:watching:alice:tab-1", stderrors.New("timeout"))
	err := NewServiceError("failed to save watch state", "watch", "heartbeat", cause)

	var cacheErr *CacheError
	if !stderrors.As(err, &cacheErr) {
		t.Fatalf("expected CacheError in chain")
	}
	if cacheErr.Operation != "set" {
		t.Fatalf("unexpected operation: %s", cacheErr.Operation)
	}
}
