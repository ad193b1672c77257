package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func bufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestWithContextAddsActiveClient(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithTenant(ctx, "acme")

	bufferLogger(&buf).WithContext(ctx).Info("loaded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["client"] != "acme" || line["request_id"] != "req-1" {
		t.Fatalf("expected client and request id, got %v", line)
	}
}

func TestWithTenantIgnoresEmptyClient(t *testing.T) {
	ctx := WithTenant(context.Background(), "")
	if ctx.Value(TenantKey) != nil {
		t.Fatal("an empty client must not be stored")
	}
}
