package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsFlowIntoOutput(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithOrderID(context.Background(), "ord-123")
	ctx = logg.WithActorRole(ctx, "employee")
	logg.Info(ctx, "transition applied")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if entry["order_id"] != "ord-123" {
		t.Fatalf("expected order_id field, got %v", entry["order_id"])
	}
	if entry["actor_role"] != "employee" {
		t.Fatalf("expected actor_role field, got %v", entry["actor_role"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["message"] != "transition applied" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("empty level should default to info")
	}
	if ParseLevel("garbage") != zerolog.InfoLevel {
		t.Fatal("unknown level should default to info")
	}
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("debug should parse")
	}
}
