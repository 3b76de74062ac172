package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/svelte-expert/internal/adapters/llm"
	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/firestore"
	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/memory"
	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/svelte-expert/internal/adapters/workspace"
	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
	"github.com/PabloGalante/svelte-expert/internal/app/chatcontext"
	"github.com/PabloGalante/svelte-expert/internal/app/conversation"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/app/tools"
	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	files    *workspace.Resolver
	analysis *analysis.Service
	handler  *participant.Orchestrator
	store    domain.StateStore

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	log := observability.Logger()

	a.files = workspace.NewResolver(cfg.Workspace.Root, cfg.Workspace.Exclude)
	if cfg.Workspace.Watch {
		idx := workspace.NewIndex(a.files)
		if err := idx.Watch(); err != nil {
			log.Warn("workspace watch disabled", "error", err)
		} else {
			a.files.UseIndex(idx)
			a.closers = append(a.closers, idx.Close)
		}
	}

	vite := analyzer.ASTViteAnalyzer{}
	a.analysis = analysis.NewService(a.files, vite)

	model, err := newLanguageModel(ctx, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := tools.NewRegistry(
		tools.ComponentAnalysisTool{},
		tools.UpgradeGuidanceTool{},
		tools.RouteTemplateTool{},
		tools.NewViteConfigTool(a.files, vite),
	)
	builder := chatcontext.NewBuilder(a.files,
		chatcontext.WithTools(registry),
	)
	a.handler = participant.NewOrchestrator(builder, model)

	store, closeStore, err := newStateStore(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	log.Info("svelte expert ready",
		"workspace", a.files.Root(),
		"llm", cfg.LLM.Provider,
		"storage", cfg.Storage.Backend,
		"panel_mode", cfg.Panel.Mode)
	return a, nil
}

// conversations opens a conversation service whose panels render to factory.
func (a *app) conversations(factory panel.SurfaceFactory) *conversation.Service {
	return conversation.NewService(a.handler, a.store, conversation.PanelSettings{
		Mode:       panel.Mode(a.cfg.Panel.Mode),
		ReplyDelay: a.cfg.Panel.ReplyDelay,
		StateKey:   a.cfg.Panel.StateKey,
		Factory:    factory,
	})
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLanguageModel(ctx context.Context, c config.LLMConfig) (domain.LanguageModel, error) {
	log := observability.Logger()
	if c.Provider == config.ProviderMock {
		log.Info("using mock language model")
		return llm.NewMockLLM(), nil
	}

	log.Info("using genai language model", "provider", c.Provider, "model", c.Model)
	client, err := llm.NewGenAIClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("initializing language model: %w", err)
	}
	return client, nil
}

func newStateStore(ctx context.Context, c config.StorageConfig) (domain.StateStore, func() error, error) {
	log := observability.Logger()
	switch c.Backend {
	case "sqlite":
		log.Info("using sqlite state store", "path", c.SQLitePath)
		s, err := sqlite.NewStateStore(c.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing sqlite store: %w", err)
		}
		return s, s.Close, nil

	case "firestore":
		log.Info("using firestore state store", "project", c.GCPProject)
		s, err := firestore.NewStateStore(ctx, c.GCPProject)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing firestore store: %w", err)
		}
		return s, s.Close, nil

	default:
		log.Info("using in-memory state store")
		return memory.NewStateStore(), nil, nil
	}
}
