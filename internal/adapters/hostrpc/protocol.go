// Package hostrpc speaks the editor host protocol: one JSON object per line
// on stdin, one JSON object per line on stdout.
package hostrpc

import (
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// Request is one line sent by the host.
type Request struct {
	Action    string          `json:"action"`
	RequestID json.RawMessage `json:"request_id,omitempty"`

	// chat
	Prompt    string         `json:"prompt,omitempty"`
	Command   string         `json:"command,omitempty"`
	History   []wireTurn     `json:"history,omitempty"`
	Selection *wireSelection `json:"selection,omitempty"`

	// cancel
	TargetID string `json:"target_id,omitempty"`

	// ask
	Text string `json:"text,omitempty"`

	// analyze_component, route_template
	Path string `json:"path,omitempty"`
}

type wireTurn struct {
	Role    string     `json:"role"` // "user" or "assistant"
	Prompt  string     `json:"prompt,omitempty"`
	Command string     `json:"command,omitempty"`
	Parts   []wirePart `json:"parts,omitempty"`
}

type wirePart struct {
	Kind  string `json:"kind"` // "markdown" or any other fragment kind
	Text  string `json:"text,omitempty"`
	Value string `json:"value,omitempty"`
}

type wireSelection struct {
	Text     string `json:"text"`
	FileName string `json:"file_name"`
}

// id returns the request id as a string; hosts send strings or numbers.
func (r Request) id() string {
	if len(r.RequestID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.RequestID, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(r.RequestID, &n); err == nil {
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	}
	return ""
}

func (r Request) turns() ([]domain.Turn, error) {
	out := make([]domain.Turn, 0, len(r.History))
	for i, t := range r.History {
		switch t.Role {
		case "user":
			out = append(out, domain.UserTurn{Prompt: t.Prompt, Command: t.Command})
		case "assistant":
			parts := make([]domain.ResponsePart, 0, len(t.Parts))
			for _, p := range t.Parts {
				if p.Kind == "markdown" {
					parts = append(parts, domain.MarkdownPart{Text: p.Text})
				} else {
					parts = append(parts, domain.OtherPart{Kind: p.Kind, Value: p.Value})
				}
			}
			out = append(out, domain.AssistantTurn{Parts: parts})
		default:
			return nil, fmt.Errorf("history[%d]: unknown role %q", i, t.Role)
		}
	}
	return out, nil
}

func (r Request) selection() domain.Selection {
	if r.Selection == nil {
		return domain.Selection{}
	}
	return domain.Selection{Text: r.Selection.Text, FileName: r.Selection.FileName}
}
