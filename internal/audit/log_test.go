package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"bookstore.org/internal/auth"
	"bookstore.org/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = auth.ContextWithClaims(ctx, &auth.Claims{
		Email:            "pat@example.com",
		Role:             "customer",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})

	if err := LogEvent(ctx, "audit.test", map[string]any{"foo": "bar"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "audit.test" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["user_id"] != "user-42" {
		t.Fatalf("unexpected user id: %v", entry["user_id"])
	}
	if entry["email"] != "pat@example.com" {
		t.Fatalf("unexpected email: %v", entry["email"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["foo"] != "bar" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatalf("blank event name should fail")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	if got := RequestIDFromContext(ctx); got != "req-9" {
		t.Fatalf("unexpected request id: %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id on bare context, got %q", got)
	}
	// Blank ids are not attached at all.
	ctx = WithRequestID(context.Background(), "   ")
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected blank id dropped, got %q", got)
	}
}
