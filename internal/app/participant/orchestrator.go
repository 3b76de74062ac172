// Package participant answers chat requests addressed to the Svelte expert.
package participant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/svelte-expert/internal/app/chatcontext"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// ID is the participant id registered with the host.
const ID = "svelte-expert"

const (
	ProgressText = "Processing your Svelte/SvelteKit question..."
	ApologyText  = "Sorry, I encountered an error while processing your request."
)

// State is the lifecycle stage of one request.
type State string

const (
	StateIdle       State = "idle"
	StateBuilding   State = "building"
	StateDispatched State = "dispatched"
	StateStreaming  State = "streaming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ContextBuilder assembles the model messages for a request.
type ContextBuilder interface {
	Build(ctx context.Context, in chatcontext.Input) ([]domain.ModelMessage, error)
}

type HandleInput struct {
	SessionID domain.SessionID
	Request   domain.ChatRequest
	History   []domain.Turn
	// IsFirstTurn defaults to an empty History when nil.
	IsFirstTurn *bool
	Editor      domain.Editor
}

func (in HandleInput) firstTurn() bool {
	if in.IsFirstTurn != nil {
		return *in.IsFirstTurn
	}
	return len(in.History) == 0
}

// Result is the outcome of one request.
type Result struct {
	State State
	// Text is everything written as markdown, footer and apology included.
	Text     string
	Messages []domain.ModelMessage
	Footer   bool
	Err      error
}

// Orchestrator drives a request from context building to the streamed reply.
type Orchestrator struct {
	builder ContextBuilder
	llm     domain.LanguageModel
}

func NewOrchestrator(builder ContextBuilder, llm domain.LanguageModel) *Orchestrator {
	return &Orchestrator{builder: builder, llm: llm}
}

// Handle never returns an error: failures end in StateFailed with a single
// apology written to stream. Cancellation is carried by ctx to the model.
func (o *Orchestrator) Handle(ctx context.Context, in HandleInput, stream domain.ResponseStream) (res Result) {
	log := observability.LoggerFromContext(ctx).With("command", in.Request.Command)
	start := time.Now()

	var text strings.Builder
	res.State = StateIdle

	transition := func(s State) {
		log.Debug("request state", "from", res.State, "to", s)
		res.State = s
	}
	fail := func(stage string, err error) Result {
		log.Error("chat request failed", "stage", stage, "error", err)
		transition(StateFailed)
		stream.Markdown(ApologyText)
		text.WriteString(ApologyText)
		res.Text = text.String()
		res.Err = fmt.Errorf("%s: %w", stage, err)
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(string(res.State), fmt.Errorf("panic: %v", r))
		}
	}()

	transition(StateBuilding)
	stream.Progress(ProgressText)

	msgs, err := o.builder.Build(ctx, chatcontext.Input{
		SessionID: in.SessionID,
		History:   in.History,
		Request:   in.Request,
		Editor:    in.Editor,
	})
	if err != nil {
		return fail("build context", err)
	}
	res.Messages = msgs

	transition(StateDispatched)
	seq, err := o.llm.Stream(ctx, msgs)
	if err != nil {
		return fail("dispatch", err)
	}

	transition(StateStreaming)
	fragments := 0
	for frag, err := range seq {
		if err != nil {
			return fail("stream", err)
		}
		stream.Markdown(frag)
		text.WriteString(frag)
		fragments++
	}

	if ShouldAppendResources(in.firstTurn(), in.Request.Prompt, text.String()) {
		footer := ResourcesFooter()
		stream.Markdown(footer)
		text.WriteString(footer)
		res.Footer = true
	}
	stream.Metadata(Metadata(in.Request))

	transition(StateCompleted)
	res.Text = text.String()
	log.Info("chat request completed",
		"fragments", fragments,
		"footer", res.Footer,
		"elapsed_ms", time.Since(start).Milliseconds())
	return res
}

// Metadata describes a completed reply to the host.
func Metadata(req domain.ChatRequest) map[string]any {
	requestType := "generic"
	if req.Command != "" {
		requestType = req.Command
	}
	return map[string]any{
		"svelteVersion":  "Svelte 5",
		"requestType":    requestType,
		"referenceLinks": ReferenceLinks,
	}
}
