package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

func TestSender_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSender(Config{Host: "smtp.local", Port: 2525, From: "noreply@example.com"}, zerolog.Nop())
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		if a != nil {
			t.Fatalf("expected no auth without username")
		}
		return nil
	}

	err := s.Send(context.Background(), ports.MailMessage{To: "a@example.com", Subject: "Password Reset", HTML: "<p>123456</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.local:2525" || gotFrom != "noreply@example.com" || len(gotTo) != 1 || gotTo[0] != "a@example.com" {
		t.Fatalf("unexpected envelope: %s %s %v", gotAddr, gotFrom, gotTo)
	}
	body := string(gotMsg)
	for _, want := range []string{"Subject: Password Reset\r\n", "Content-Type: text/html", "\r\n\r\n<p>123456</p>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("message missing %q:\n%s", want, body)
		}
	}
}

func TestSender_SendError(t *testing.T) {
	s := NewSender(Config{Host: "smtp.local", Port: 25, Username: "u", Password: "p"}, zerolog.Nop())
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	if err := s.Send(context.Background(), ports.MailMessage{To: "a@example.com"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSender_CancelledContext(t *testing.T) {
	s := NewSender(Config{}, zerolog.Nop())
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatalf("send must not be called")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, ports.MailMessage{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildMessage_Date(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := string(buildMessage("f@example.com", ports.MailMessage{To: "t@example.com"}, date))
	if !strings.Contains(msg, "Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n") {
		t.Fatalf("unexpected date header:\n%s", msg)
	}
}
