package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// Panel is the chat panel the server exposes.
type Panel interface {
	Show()
	SendMessage(ctx context.Context, text string) error
	Messages() []domain.ChatEntry
	HTML() string
}

type Server struct {
	panel    Panel
	hub      *Hub
	analysis *analysis.Service
	md       goldmark.Markdown
}

// NewServer serves the panel of one session and the analysis reports.
// hub must be the surface the panel was opened with.
func NewServer(p Panel, hub *Hub, svc *analysis.Service) http.Handler {
	s := &Server{panel: p, hub: hub, analysis: svc, md: goldmark.New()}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)

	// /panel           → GET: panel document
	// /panel/messages  → GET: chat log, POST: send message
	// /panel/ws        → websocket pushes of the re-rendered panel
	mux.HandleFunc("/panel", s.handlePanel)
	mux.HandleFunc("/panel/messages", s.handleMessages)
	mux.HandleFunc("/panel/ws", s.handleWS)

	// /reports/component?path=...  /reports/project
	mux.HandleFunc("/reports/component", s.handleComponentReport)
	mux.HandleFunc("/reports/project", s.handleProjectReport)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type sendMessageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type messagesResponse struct {
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"panel_clients": s.hub.Clients(),
	})
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.panel.Show()
	writeHTML(w, http.StatusOK, s.panel.HTML())
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, messagesResponse{Messages: toMessagesResponse(s.panel.Messages())})
	case http.MethodPost:
		s.handleSendMessage(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	if err := s.panel.SendMessage(r.Context(), req.Text); err != nil {
		if errors.Is(err, panel.ErrEmptyMessage) {
			badRequest(w, err.Error())
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messagesResponse{Messages: toMessagesResponse(s.panel.Messages())})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.panel.Show()
	s.hub.serveWS(w, r)
}

func (s *Server) handleComponentReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	p := r.URL.Query().Get("path")
	if p == "" {
		badRequest(w, "path is required")
		return
	}

	report, err := s.analysis.AnalyzeComponent(r.Context(), p)
	s.writeReport(w, r, "Svelte Component Analysis", report, err)
}

func (s *Server) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	report, err := s.analysis.AnalyzeProject(r.Context())
	s.writeReport(w, r, "SvelteKit Project Analysis", report, err)
}

// writeReport renders a markdown report. Informational outcomes are a 200
// notice page, not an error.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, title, report string, err error) {
	if err != nil {
		if analysis.IsNotice(err) {
			writeHTML(w, http.StatusOK, reportPage(title, `<p class="notice">`+panel.EscapeHTML(err.Error())+`</p>`))
			return
		}
		internalError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(report), &buf); err != nil {
		internalError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, reportPage(title, buf.String()))
}

func reportPage(title, body string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>` + panel.EscapeHTML(title) + `</title></head>
<body>
` + body + `</body>
</html>
`
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toMessagesResponse(entries []domain.ChatEntry) []messageResponse {
	out := make([]messageResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, messageResponse{
			ID:        string(e.ID),
			Sender:    string(e.Sender),
			Text:      e.Text,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
