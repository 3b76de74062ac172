package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

var ErrSessionClosed = errors.New("session closed")

// Handler answers one participant request.
type Handler interface {
	Handle(ctx context.Context, in participant.HandleInput, stream domain.ResponseStream) participant.Result
}

type PanelSettings struct {
	Mode       panel.Mode
	ReplyDelay time.Duration
	StateKey   string
	Factory    panel.SurfaceFactory
}

type Service struct {
	handler Handler
	store   domain.StateStore
	panel   PanelSettings
	now     func() time.Time

	mu       sync.Mutex
	sessions map[domain.SessionID]*Session
}

func NewService(handler Handler, store domain.StateStore, ps PanelSettings) *Service {
	return &Service{
		handler:  handler,
		store:    store,
		panel:    ps,
		now:      time.Now,
		sessions: make(map[domain.SessionID]*Session),
	}
}

// Open starts a session: its panel log is restored from the state store and
// its demo replies are scheduled on a scheduler that lives until Close.
func (s *Service) Open(ctx context.Context) (*Session, error) {
	id := domain.SessionID(uuid.NewString())

	log := observability.LoggerFromContext(ctx).With("session_id", id)
	log.Info("opening session", "panel_mode", s.panel.Mode)

	// Demo replies must outlive the request that opened the session.
	sched := panel.NewScheduler(observability.WithSessionID(context.Background(), string(id)))

	sess := &Session{
		ID:        id,
		CreatedAt: s.now(),
		svc:       s,
		scheduler: sched,
	}

	opts := panel.Options{
		Store:      s.store,
		StateKey:   s.panel.StateKey,
		Factory:    s.panel.Factory,
		Mode:       s.panel.Mode,
		ReplyDelay: s.panel.ReplyDelay,
		Scheduler:  sched,
		Now:        s.now,
	}
	if opts.Mode == panel.ModeIntegrated {
		opts.Responder = sess
	}

	p, err := panel.New(ctx, opts)
	if err != nil {
		sched.Stop()
		log.Error("failed to open panel", "error", err)
		return nil, err
	}
	sess.panel = p

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Info("session opened", "restored_messages", len(p.Messages()))
	return sess, nil
}

// Get returns an open session.
func (s *Service) Get(id domain.SessionID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// CloseAll closes every open session.
func (s *Service) CloseAll() {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.Close()
	}
}

func (s *Service) forget(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Ask runs a request against the session history and records the exchange.
// Failed requests are recorded too, so the session stays usable.
func (s *Service) Ask(ctx context.Context, sess *Session, req domain.ChatRequest, stream domain.ResponseStream) (participant.Result, error) {
	history, err := sess.snapshot()
	if err != nil {
		return participant.Result{}, err
	}

	ctx = observability.WithSessionID(ctx, string(sess.ID))
	log := observability.LoggerFromContext(ctx)
	log.Info("ask", "command", req.Command, "history_turns", len(history))

	rec := &recorder{next: stream}
	res := s.handler.Handle(ctx, participant.HandleInput{
		SessionID: sess.ID,
		Request:   req,
		History:   history,
	}, rec)

	sess.record(
		domain.UserTurn{Prompt: req.Prompt, Command: req.Command},
		domain.AssistantTurn{Parts: rec.parts},
	)

	log.Info("ask completed", "state", res.State)
	return res, nil
}

// recorder forwards to the host stream and keeps every markdown fragment.
type recorder struct {
	next  domain.ResponseStream
	parts []domain.ResponsePart
}

func (r *recorder) Progress(text string) {
	if r.next != nil {
		r.next.Progress(text)
	}
}

func (r *recorder) Markdown(fragment string) {
	r.parts = append(r.parts, domain.MarkdownPart{Text: fragment})
	if r.next != nil {
		r.next.Markdown(fragment)
	}
}

func (r *recorder) Metadata(md map[string]any) {
	if r.next != nil {
		r.next.Metadata(md)
	}
}
