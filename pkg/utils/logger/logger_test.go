package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dvorak/pkg/utils/contextkey"

	"go.uber.org/zap"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestLoggerWritesContextFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := NewLogger(Config{Level: "debug", Format: "json", OutputPath: path})
	if err != nil {
		t.Fatalf("new logger failed: %v", err)
	}
	ctx := context.WithValue(context.Background(), contextkey.JobID, "J1")
	ctx = context.WithValue(ctx, contextkey.TraceID, "T1")
	l.WithContext(ctx).Info("poll completed", zap.String("result", "AC"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"job_id":"J1"`, `"trace_id":"T1"`, `"result":"AC"`, `"msg":"poll completed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestGlobalHelpersWithoutInit(t *testing.T) {
	globalLogger = nil
	Info(context.Background(), "dropped")
	if err := Sync(); err != nil {
		t.Fatalf("sync without logger should be nil, got %v", err)
	}
}
