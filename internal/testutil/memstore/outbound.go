package memstore

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// ErrMailDown is returned by Mailer while Fail is set.
var ErrMailDown = errors.New("mail transport unavailable")

// Mailer records sent messages.
type Mailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
	Fail bool
}

func (m *Mailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrMailDown
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a snapshot of delivered messages.
func (m *Mailer) Sent() []ports.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.MailMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Images is an in-memory ports.ImageStore keyed by image name.
type Images struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewImages() *Images {
	return &Images{Objects: make(map[string][]byte)}
}

func (s *Images) Save(_ context.Context, img ports.Image) (string, error) {
	data, err := io.ReadAll(img.Body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[img.Name] = data
	return img.Name, nil
}

func (s *Images) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, ref)
	return nil
}

// Has reports whether ref is stored.
func (s *Images) Has(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[ref]
	return ok
}
