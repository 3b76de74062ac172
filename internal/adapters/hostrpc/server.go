package hostrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/PabloGalante/svelte-expert/internal/adapters/workspace"
	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
	"github.com/PabloGalante/svelte-expert/internal/app/conversation"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

const maxLine = 1 << 20

var ErrBusy = errors.New("another request is already in progress")

type Server struct {
	handler  conversation.Handler
	session  *conversation.Session
	analysis *analysis.Service

	outMu sync.Mutex
	enc   *json.Encoder

	active  activeStream
	wg      sync.WaitGroup
	surface *Surface
}

// activeStream tracks the single chat request allowed at a time.
type activeStream struct {
	mu        sync.Mutex
	requestID string
	running   bool
	cancel    context.CancelFunc
}

// NewServer answers host requests on out.
func NewServer(handler conversation.Handler, svc *analysis.Service, out io.Writer) *Server {
	s := &Server{
		handler:  handler,
		analysis: svc,
		enc:      json.NewEncoder(out),
	}
	s.surface = &Surface{srv: s}
	return s
}

// Attach enables the panel actions. The session should have been opened
// with Surface as its panel surface. Call before Serve.
func (s *Server) Attach(session *conversation.Session) {
	s.session = session
}

// Serve reads requests until in is exhausted or ctx ends, then waits for
// running chats to finish.
func (s *Server) Serve(ctx context.Context, in io.Reader) error {
	defer s.wg.Wait()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		if ctx.Err() != nil {
			s.cancelActive("")
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handleLine(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			s.respond("", map[string]any{"type": "error", "message": "request too large (max 1MB)"})
		}
		s.cancelActive("")
		return fmt.Errorf("reading host input: %w", err)
	}
	return nil
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		observability.LoggerFromContext(ctx).Warn("invalid host request", "error", err)
		s.respond("", map[string]any{"type": "error", "message": "invalid JSON"})
		return
	}

	reqID := req.id()
	ctx = observability.WithRequestID(ctx, reqID)
	log := observability.LoggerFromContext(ctx)
	log.Debug("host request", "action", req.Action)

	switch req.Action {
	case "ping":
		s.respond(reqID, map[string]any{"type": "ok"})

	case "chat":
		s.handleChat(ctx, reqID, req)

	case "cancel":
		s.respond(reqID, map[string]any{"type": "ok", "canceled": s.cancelActive(req.TargetID)})

	case "open_chat":
		if s.session == nil {
			s.respond(reqID, map[string]any{"type": "error", "message": "chat panel is not available"})
			return
		}
		s.session.Panel().Show()
		s.respond(reqID, map[string]any{"type": "ok", "session_id": s.session.ID})

	case "close_chat":
		s.surface.Dispose()
		s.respond(reqID, map[string]any{"type": "ok"})

	case "ask":
		s.handleAsk(ctx, reqID, req)

	case "analyze_component":
		report, err := s.analysis.AnalyzeComponent(ctx, req.Path)
		s.respondReport(reqID, report, err)

	case "analyze_project":
		report, err := s.analysis.AnalyzeProject(ctx)
		s.respondReport(reqID, report, err)

	case "route_template":
		tpl := s.analysis.RouteTemplate(req.Path)
		s.respond(reqID, map[string]any{"type": "report", "files": tpl.Files()})

	default:
		s.respond(reqID, map[string]any{"type": "error", "message": fmt.Sprintf("unknown action %q", req.Action)})
	}
}

// handleChat streams one participant reply. The reply runs in its own
// goroutine so cancel requests can be read meanwhile.
func (s *Server) handleChat(ctx context.Context, reqID string, req Request) {
	history, err := req.turns()
	if err != nil {
		s.respond(reqID, map[string]any{"type": "error", "message": err.Error()})
		return
	}

	chatCtx, cancel := context.WithCancel(ctx)
	if !s.reserve(reqID, cancel) {
		cancel()
		s.respond(reqID, map[string]any{"type": "error", "message": ErrBusy.Error()})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(reqID)
		defer cancel()

		res := s.handler.Handle(chatCtx, participant.HandleInput{
			Request: domain.ChatRequest{Prompt: req.Prompt, Command: req.Command},
			History: history,
			Editor:  workspace.StaticEditor{Selection: req.selection()},
		}, &hostStream{srv: s, reqID: reqID})

		done := map[string]any{"type": "done", "state": res.State}
		if chatCtx.Err() != nil {
			done["canceled"] = true
		}
		s.respond(reqID, done)
	}()
}

func (s *Server) handleAsk(ctx context.Context, reqID string, req Request) {
	if s.session == nil {
		s.respond(reqID, map[string]any{"type": "error", "message": "chat panel is not available"})
		return
	}
	if req.Text == "" {
		s.respond(reqID, map[string]any{"type": "error", "message": "missing required field: text"})
		return
	}

	p := s.session.Panel()
	p.Show()
	if err := p.SendMessage(ctx, req.Text); err != nil {
		s.respond(reqID, errorResponse(err))
		return
	}
	s.respond(reqID, map[string]any{"type": "ok", "messages": len(p.Messages())})
}

func (s *Server) respondReport(reqID, report string, err error) {
	if err != nil {
		if analysis.IsNotice(err) {
			s.respond(reqID, map[string]any{"type": "info", "message": err.Error()})
			return
		}
		s.respond(reqID, errorResponse(err))
		return
	}
	s.respond(reqID, map[string]any{"type": "report", "markdown": report})
}

func (s *Server) reserve(reqID string, cancel context.CancelFunc) bool {
	s.active.mu.Lock()
	defer s.active.mu.Unlock()
	if s.active.running {
		return false
	}
	s.active.running = true
	s.active.requestID = reqID
	s.active.cancel = cancel
	return true
}

func (s *Server) release(reqID string) {
	s.active.mu.Lock()
	defer s.active.mu.Unlock()
	if s.active.requestID != reqID {
		return
	}
	s.active.running = false
	s.active.requestID = ""
	s.active.cancel = nil
}

// cancelActive cancels the running chat. An empty targetID matches any.
func (s *Server) cancelActive(targetID string) bool {
	s.active.mu.Lock()
	if !s.active.running || (targetID != "" && s.active.requestID != targetID) {
		s.active.mu.Unlock()
		return false
	}
	cancel := s.active.cancel
	s.active.mu.Unlock()

	cancel()
	return true
}

func errorResponse(err error) map[string]any {
	msg := err.Error()
	switch {
	case errors.Is(err, workspace.ErrNotFound):
		msg = "File not found"
	case errors.Is(err, conversation.ErrSessionClosed):
		msg = "Session closed"
	}
	return map[string]any{"type": "error", "message": msg}
}

func (s *Server) respond(reqID string, data map[string]any) {
	if reqID != "" {
		data["request_id"] = reqID
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := s.enc.Encode(data); err != nil {
		observability.Logger().Error("writing host response", "error", err)
	}
}

// hostStream writes participant output as protocol lines.
type hostStream struct {
	srv   *Server
	reqID string
}

func (h *hostStream) Progress(text string) {
	h.srv.respond(h.reqID, map[string]any{"type": "progress", "text": text})
}

func (h *hostStream) Markdown(fragment string) {
	h.srv.respond(h.reqID, map[string]any{"type": "markdown", "text": fragment})
}

func (h *hostStream) Metadata(md map[string]any) {
	h.srv.respond(h.reqID, map[string]any{"type": "metadata", "metadata": md})
}

// Surface renders the chat panel to the host as "panel" lines.
type Surface struct {
	srv *Server

	mu        sync.Mutex
	onDispose func()
}

// Surface is the panel surface backed by this server's output.
func (s *Server) Surface() *Surface { return s.surface }

func (p *Surface) SetHTML(html string) {
	p.srv.respond("", map[string]any{"type": "panel", "html": html})
}

func (p *Surface) Reveal() {
	p.srv.respond("", map[string]any{"type": "panel_reveal"})
}

func (p *Surface) OnDispose(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDispose = fn
}

// Dispose tells the panel the host closed its view.
func (p *Surface) Dispose() {
	p.mu.Lock()
	fn := p.onDispose
	p.onDispose = nil
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}
