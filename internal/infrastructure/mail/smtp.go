// Package mail delivers transactional mail over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/api/metrics"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender is a ports.Mailer that delivers each message in one SMTP session.
type Sender struct {
	cfg  Config
	send SendFunc
	now  func() time.Time
	log  zerolog.Logger
}

func NewSender(cfg Config, log zerolog.Logger) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail, now: time.Now, log: log}
}

// Send delivers msg. Failures are returned and not retried.
func (s *Sender) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	start := s.now()
	err := s.send(addr, auth, s.cfg.From, []string{msg.To}, buildMessage(s.cfg.From, msg, start))
	metrics.MailDeliveryDuration.Observe(time.Since(start).Seconds())
	metrics.MailDispatchTotal.WithLabelValues("smtp", metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail delivered")
	return nil
}

func buildMessage(from string, msg ports.MailMessage, date time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}
