package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscordNotifier_RoomAccessEmbed(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier("", testLogger())

	err := n.NotifyRoomAccess(context.Background(), srv.URL, RoomAccessEvent{
		UniverseName: "Acme",
		WorldName:    "Campus",
		RoomName:     "Lobby",
		UserName:     "alice",
		UserUUID:     "u-123",
		Granted:      true,
		At:           time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NotifyRoomAccess failed: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.Title != "alice entered Lobby" {
		t.Errorf("title = %q", embed.Title)
	}
	if embed.Color != colorGranted {
		t.Errorf("color = %#x, want granted color", embed.Color)
	}
	if embed.Timestamp != "2025-03-01T12:00:00Z" {
		t.Errorf("timestamp = %q", embed.Timestamp)
	}
}

func TestDiscordNotifier_DeniedUsesDeniedColor(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL, testLogger())

	// Empty per-universe webhook falls back to the default.
	err := n.NotifyRoomAccess(context.Background(), "", RoomAccessEvent{
		RoomName: "Vault",
		UserName: "bob",
		Granted:  false,
		At:       time.Now(),
	})
	if err != nil {
		t.Fatalf("NotifyRoomAccess failed: %v", err)
	}

	if got.Embeds[0].Color != colorDenied {
		t.Errorf("color = %#x, want denied color", got.Embeds[0].Color)
	}
	if got.Embeds[0].Title != "bob was refused from Vault" {
		t.Errorf("title = %q", got.Embeds[0].Title)
	}
}

func TestDiscordNotifier_NoWebhookIsNoop(t *testing.T) {
	n := NewDiscordNotifier("", testLogger())

	// No default, no per-universe webhook: must not attempt any request.
	err := n.NotifyMemberJoined(context.Background(), "", MemberEvent{
		UniverseName: "Acme",
		Email:        "new@example.com",
		Role:         "editor",
		At:           time.Now(),
	})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestDiscordNotifier_ErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewDiscordNotifier(srv.URL, testLogger())

	err := n.NotifyMemberJoined(context.Background(), "", MemberEvent{Email: "x@example.com"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}
