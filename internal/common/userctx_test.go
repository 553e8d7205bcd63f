package common

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Absent by default
	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}
	if _, ok := ResolveUserID(ctx); ok {
		t.Error("Expected no user ID from empty context")
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-123"})

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	id, ok := ResolveUserID(ctx)
	if !ok || id != "user-123" {
		t.Errorf("Expected user-123, got %q (ok=%v)", id, ok)
	}
}

func TestResolveUserID_EmptyIDIsAbsent(t *testing.T) {
	ctx := WithUserContext(context.Background(), &UserContext{})
	if _, ok := ResolveUserID(ctx); ok {
		t.Error("Expected empty user ID to be treated as absent")
	}
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("Expected empty correlation ID, got %q", id)
	}
	ctx = WithCorrelationID(ctx, "abc")
	if id := CorrelationIDFromContext(ctx); id != "abc" {
		t.Errorf("Expected abc, got %q", id)
	}
}

func TestApplyVersionFile(t *testing.T) {
	oldV, oldB, oldC := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = oldV, oldB, oldC })

	Version, Build, GitCommit = "dev", "unknown", "v-from-ldflags"
	applyVersionFile(strings.NewReader("# comment\nversion: 1.4.0\nbuild: 2026-01-02\ncommit: deadbeef\nnonsense\n"))

	if Version != "1.4.0" {
		t.Errorf("Version = %q, want 1.4.0", Version)
	}
	if Build != "2026-01-02" {
		t.Errorf("Build = %q, want 2026-01-02", Build)
	}
	if GitCommit != "v-from-ldflags" {
		t.Errorf("ldflags commit must not be overwritten, got %q", GitCommit)
	}
}

func TestPrintBanner_IncludesStorageTarget(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.DSN = "data/test.db"

	var buf bytes.Buffer
	printBanner(&buf, cfg)

	if !strings.Contains(buf.String(), "sqlite data/test.db") {
		t.Errorf("banner missing storage target:\n%s", buf.String())
	}
}

func TestNewLoggerWithOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("user_id", "u1").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"user_id":"u1"`) {
		t.Errorf("expected structured field in output, got %s", out)
	}
}
