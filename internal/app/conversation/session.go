package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// Session is one open conversation: its turn history and its chat panel.
type Session struct {
	ID        domain.SessionID
	CreatedAt time.Time

	svc       *Service
	panel     *panel.Panel
	scheduler *panel.Scheduler

	mu      sync.Mutex
	history []domain.Turn
	closed  bool
}

func (s *Session) Panel() *panel.Panel { return s.panel }

// History returns a copy of the recorded turns.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Turn(nil), s.history...)
}

func (s *Session) snapshot() ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return append([]domain.Turn(nil), s.history...), nil
}

func (s *Session) record(turns ...domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.history = append(s.history, turns...)
}

// Respond answers a panel message through the participant. A failed request
// still yields its apology text.
func (s *Session) Respond(ctx context.Context, text string) (string, error) {
	res, err := s.svc.Ask(ctx, s, domain.ChatRequest{Prompt: text}, nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Close stops pending panel replies and detaches the surface. It is safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.scheduler.Stop()
	s.panel.Dispose()
	s.svc.forget(s.ID)
}
