package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotifierNotify(t *testing.T) {
	t.Parallel()

	var gotPath, gotChatID, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := NewNotifier("bot-token", "chat-42")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.Notify(context.Background(), "Match found in 'golang':"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotChatID != "chat-42" {
		t.Fatalf("unexpected chat id: %s", gotChatID)
	}
	if gotText != "Match found in 'golang':" {
		t.Fatalf("unexpected text: %s", gotText)
	}
}

func TestNotifierNotifyErrorMarksMessage(t *testing.T) {
	t.Parallel()

	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotText = r.FormValue("text")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := NewNotifier("bot-token", "chat-42")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.NotifyError(context.Background(), "fetch golang: listing status 503"); err != nil {
		t.Fatalf("NotifyError error: %v", err)
	}

	if !strings.HasPrefix(gotText, "⚠️ ") {
		t.Fatalf("error message missing warning marker: %q", gotText)
	}
	if !strings.Contains(gotText, "listing status 503") {
		t.Fatalf("error message missing cause: %q", gotText)
	}
}

func TestNotifierMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.Notify(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestNotifierBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	n := NewNotifier("bot-token", "chat-42")
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.Notify(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}
