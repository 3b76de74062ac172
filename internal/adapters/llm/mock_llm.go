package llm

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// MockLLM is a scripted LanguageModel for development and tests.
// With no script it echoes the last user message in a few fragments.
type MockLLM struct {
	mu        sync.Mutex
	fragments []string
	streamErr error // yielded after the fragments
	dispatch  error // returned by Stream itself
	calls     [][]domain.ModelMessage
}

func NewMockLLM(fragments ...string) *MockLLM {
	return &MockLLM{fragments: fragments}
}

// FailDispatch makes Stream return err before any fragment.
func (m *MockLLM) FailDispatch(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch = err
	return m
}

// FailAfter makes the sequence yield err after the scripted fragments.
func (m *MockLLM) FailAfter(err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
	return m
}

// Calls returns the message lists received so far.
func (m *MockLLM) Calls() [][]domain.ModelMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.ModelMessage(nil), m.calls...)
}

func (m *MockLLM) Stream(ctx context.Context, messages []domain.ModelMessage) (iter.Seq2[string, error], error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	fragments, streamErr, dispatch := m.fragments, m.streamErr, m.dispatch
	m.mu.Unlock()

	if dispatch != nil {
		return nil, dispatch
	}
	if len(fragments) == 0 {
		fragments = echo(messages)
	}

	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}, nil
}

func echo(messages []domain.ModelMessage) []string {
	last := ""
	if n := len(messages); n > 0 {
		last = messages[n-1].Content
	}
	return []string{
		"**Svelte Expert**: ",
		fmt.Sprintf("you asked %q. ", last),
		"Configure an llm.provider to get real answers.",
	}
}
