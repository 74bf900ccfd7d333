package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	Reset()
	got := Current()
	want := Config{Ping: DefaultPing, Short: DefaultShort, Backend: DefaultBackend, Medium: DefaultMedium}
	if got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Configure(Config{Backend: 3 * time.Second})
	if Backend() != 3*time.Second {
		t.Errorf("Backend() = %v", Backend())
	}
	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium {
		t.Error("zero fields should keep defaults")
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("TIMEOUT_BACKEND", "15s")
	t.Setenv("TIMEOUT_PING", "500ms")
	t.Setenv("TIMEOUT_SHORT", "nonsense")
	t.Setenv("TIMEOUT_MEDIUM", "-1s")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("configured = %d, want 2", n)
	}
	if Backend() != 15*time.Second {
		t.Errorf("Backend() = %v", Backend())
	}
	if Ping() != 500*time.Millisecond {
		t.Errorf("Ping() = %v", Ping())
	}
	if Short() != DefaultShort || Medium() != DefaultMedium {
		t.Error("invalid values should be skipped")
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "backend lookup")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "backend lookup" {
		t.Errorf("operation = %v", op)
	}
}

func TestWithTimeout_NoLogWhenCanceledEarly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Minute, zap.New(core), "x")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("expected no log entries, got %d", logs.Len())
	}
}
