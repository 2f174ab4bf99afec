package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redlinehq/redline/internal/notify"
)

type stubChannel struct {
	sent int
	err  error
}

func (s *stubChannel) Send(_ context.Context, _ []string, _, _ string) error {
	s.sent++
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendFansOut(t *testing.T) {
	a := &stubChannel{}
	b := &stubChannel{}
	sys := notify.New([]notify.Channel{a, b}, discardLogger())

	err := sys.Send(context.Background(), []string{"legal@example.com"}, "subject", "body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if a.sent != 1 || b.sent != 1 {
		t.Errorf("channel sends = %d, %d, expected 1 each", a.sent, b.sent)
	}
}

func TestSendPartialFailure(t *testing.T) {
	ok := &stubChannel{}
	bad := &stubChannel{err: errors.New("relay down")}
	sys := notify.New([]notify.Channel{ok, bad}, discardLogger())

	err := sys.Send(context.Background(), []string{"legal@example.com"}, "subject", "body")
	if err != nil {
		t.Errorf("Send() error = %v, partial failure should not fail the send", err)
	}
}

func TestSendAllChannelsFail(t *testing.T) {
	bad := &stubChannel{err: errors.New("relay down")}
	sys := notify.New([]notify.Channel{bad}, discardLogger())

	err := sys.Send(context.Background(), []string{"legal@example.com"}, "subject", "body")
	if !errors.Is(err, notify.ErrSend) {
		t.Errorf("Send() error = %v, expected ErrSend", err)
	}
}

func TestSendNoAddresses(t *testing.T) {
	ch := &stubChannel{}
	sys := notify.New([]notify.Channel{ch}, discardLogger())

	if err := sys.Send(context.Background(), nil, "subject", "body"); err != nil {
		t.Errorf("Send() error = %v, expected drop without error", err)
	}
	if ch.sent != 0 {
		t.Errorf("channel sends = %d, expected 0", ch.sent)
	}
}

func TestSendNoChannels(t *testing.T) {
	sys := notify.New(nil, discardLogger())

	if err := sys.Send(context.Background(), []string{"x@example.com"}, "subject", "body"); err != nil {
		t.Errorf("Send() error = %v, expected log-and-drop", err)
	}
}

func TestWebhookSend(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
	}))
	defer srv.Close()

	ch := notify.NewWebhook(&notify.WebhookConfig{URL: srv.URL})

	err := ch.Send(context.Background(), []string{"legal@example.com"}, "Flag accepted", "details")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPayload["subject"] != "Flag accepted" {
		t.Errorf("payload subject = %v", gotPayload["subject"])
	}
	addrs, _ := gotPayload["addresses"].([]any)
	if len(addrs) != 1 || addrs[0] != "legal@example.com" {
		t.Errorf("payload addresses = %v", gotPayload["addresses"])
	}
}

func TestWebhookSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := notify.NewWebhook(&notify.WebhookConfig{URL: srv.URL})

	if err := ch.Send(context.Background(), []string{"x@example.com"}, "s", "b"); err == nil {
		t.Error("Send() expected error for non-2xx response")
	}
}

func TestWebhookConfigTimeout(t *testing.T) {
	cfg := notify.WebhookConfig{Timeout: "bogus"}
	if got := cfg.TimeoutDuration().String(); got != "10s" {
		t.Errorf("TimeoutDuration() = %s, expected default 10s", got)
	}

	cfg.Timeout = "2s"
	if got := cfg.TimeoutDuration().String(); got != "2s" {
		t.Errorf("TimeoutDuration() = %s, expected 2s", got)
	}
}

func TestSMTPConfigAddr(t *testing.T) {
	cfg := notify.SMTPConfig{Host: "mail.example.com", Port: 587}
	if got := cfg.Addr(); got != "mail.example.com:587" {
		t.Errorf("Addr() = %s", got)
	}
}

func TestSMTPSendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := notify.NewSMTP(&notify.SMTPConfig{Host: "localhost", Port: 2525, From: "redline@example.com"})

	if err := ch.Send(ctx, []string{"x@example.com"}, "s", "b"); !errors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, expected context.Canceled", err)
	}
}
