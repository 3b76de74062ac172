// Package panel keeps the chat panel log and renders it to its surface.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// Surface is where the rendered panel is shown.
type Surface interface {
	SetHTML(html string)
	Reveal()
	// OnDispose registers fn to run when the host closes the surface.
	OnDispose(fn func())
}

// SurfaceFactory creates a new surface on Show.
type SurfaceFactory func() Surface

// Responder answers a panel message in integrated mode.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

type Mode string

const (
	ModeDemo       Mode = "demo"
	ModeIntegrated Mode = "integrated"
)

const DefaultReplyDelay = time.Second

var ErrEmptyMessage = errors.New("empty message")

type Options struct {
	Store      domain.StateStore
	StateKey   string
	Factory    SurfaceFactory
	Mode       Mode
	ReplyDelay time.Duration
	Responder  Responder
	Scheduler  *Scheduler
	Now        func() time.Time
}

// Panel owns the ordered chat log. Every mutation re-renders the surface
// (when one exists) and persists the whole log.
type Panel struct {
	saveMu  sync.Mutex // orders persistence with appends
	mu      sync.Mutex
	entries []domain.ChatEntry
	surface Surface

	opts Options
}

// New restores the log from the store.
func New(ctx context.Context, opts Options) (*Panel, error) {
	if opts.Store == nil {
		return nil, errors.New("panel: state store is required")
	}
	if opts.StateKey == "" {
		opts.StateKey = "chatMessages"
	}
	if opts.Mode == "" {
		opts.Mode = ModeDemo
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode == ModeIntegrated && opts.Responder == nil {
		return nil, errors.New("panel: integrated mode needs a responder")
	}
	if opts.Mode == ModeDemo && opts.Scheduler == nil {
		return nil, errors.New("panel: demo mode needs a scheduler")
	}

	entries, err := opts.Store.LoadEntries(ctx, opts.StateKey)
	if err != nil {
		return nil, fmt.Errorf("restoring chat log: %w", err)
	}

	return &Panel{entries: entries, opts: opts}, nil
}

// SetResponder switches the panel to integrated mode.
func (p *Panel) SetResponder(r Responder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.Responder = r
	p.opts.Mode = ModeIntegrated
}

// Show reveals the surface, creating it first when needed.
func (p *Panel) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.surface != nil {
		p.surface.Reveal()
		return
	}
	if p.opts.Factory == nil {
		return
	}

	s := p.opts.Factory()
	p.surface = s
	s.OnDispose(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.surface == s {
			p.surface = nil
		}
	})
	s.SetHTML(Render(p.entries))
}

// Visible reports whether a surface is currently attached.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface != nil
}

// Dispose detaches the current surface, if any.
func (p *Panel) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = nil
}

// SendMessage appends a user message and produces the assistant reply:
// scheduled after the reply delay in demo mode, inline in integrated mode.
func (p *Panel) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyMessage
	}
	log := observability.LoggerFromContext(ctx)

	if err := p.append(ctx, domain.SenderUser, text); err != nil {
		return err
	}

	p.mu.Lock()
	mode, responder, sched, delay := p.opts.Mode, p.opts.Responder, p.opts.Scheduler, p.opts.ReplyDelay
	p.mu.Unlock()

	if mode == ModeIntegrated {
		reply, err := responder.Respond(ctx, text)
		if err != nil {
			log.Error("panel responder failed", "error", err)
			return fmt.Errorf("responding to panel message: %w", err)
		}
		return p.append(ctx, domain.SenderAssistant, reply)
	}

	scheduled := sched.After(delay, func(sctx context.Context) {
		if err := p.append(sctx, domain.SenderAssistant, DemoReply(text)); err != nil {
			log.Error("persisting demo reply", "error", err)
		}
	})
	if !scheduled {
		log.Warn("panel scheduler stopped, demo reply dropped")
	}
	return nil
}

// DemoReply is the canned answer of the self-contained panel.
func DemoReply(text string) string {
	return "I'm your Svelte/SvelteKit expert assistant. You asked: \"" + text + "\". " +
		"In a real implementation, I would provide expert Svelte advice here."
}

// Messages returns a copy of the log.
func (p *Panel) Messages() []domain.ChatEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChatEntry(nil), p.entries...)
}

// HTML renders the current log.
func (p *Panel) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Render(p.entries)
}

func (p *Panel) append(ctx context.Context, sender domain.Sender, text string) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	p.entries = append(p.entries, domain.ChatEntry{
		ID:        domain.EntryID(uuid.NewString()),
		Sender:    sender,
		Text:      text,
		CreatedAt: p.opts.Now(),
	})
	snapshot := append([]domain.ChatEntry(nil), p.entries...)
	if p.surface != nil {
		p.surface.SetHTML(Render(snapshot))
	}
	p.mu.Unlock()

	if err := p.opts.Store.SaveEntries(context.WithoutCancel(ctx), p.opts.StateKey, snapshot); err != nil {
		return fmt.Errorf("persisting chat log: %w", err)
	}
	return nil
}
