package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

type GenAIClient struct {
	client    *genai.Client
	modelName string
	cfg       *genai.GenerateContentConfig
}

// NewGenAIClient creates a LanguageModel backed by Gemini, either through
// the Gemini API (api key) or Vertex AI (project + location).
func NewGenAIClient(ctx context.Context, c config.LLMConfig) (*GenAIClient, error) {
	cc := &genai.ClientConfig{}
	switch c.Provider {
	case config.ProviderGemini:
		cc.APIKey = c.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case config.ProviderVertex:
		cc.Project = c.GCPProjectID
		cc.Location = c.GCPLocation
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("provider %q is not served by genai", c.Provider)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	temp := c.Temperature
	return &GenAIClient{
		client:    client,
		modelName: c.Model,
		cfg: &genai.GenerateContentConfig{
			Temperature:     &temp,
			MaxOutputTokens: c.MaxOutputTokens,
		},
	}, nil
}

// Stream implements domain.LanguageModel. The base instruction already
// travels as the first user message, so no SystemInstruction is set.
func (g *GenAIClient) Stream(ctx context.Context, messages []domain.ModelMessage) (iter.Seq2[string, error], error) {
	if len(messages) == 0 {
		return nil, errors.New("genai: no messages to send")
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	responses := g.client.Models.GenerateContentStream(ctx, g.modelName, contents, g.cfg)

	return func(yield func(string, error) bool) {
		for res, err := range responses {
			if err != nil {
				yield("", fmt.Errorf("genai stream: %w", err))
				return
			}
			text := res.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}, nil
}
