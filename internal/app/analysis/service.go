// Package analysis produces the markdown reports behind the analyze commands.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/app/tools"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

var (
	// ErrNotSvelteFile means the input is not a .svelte component.
	ErrNotSvelteFile = errors.New("please open a Svelte (.svelte) file to analyze")
	// ErrNoProject means neither routes nor a Vite config were found.
	ErrNoProject = errors.New("no SvelteKit project detected in the current workspace")
)

// IsNotice reports whether err is an informational outcome rather than a failure.
func IsNotice(err error) bool {
	return errors.Is(err, ErrNotSvelteFile) || errors.Is(err, ErrNoProject)
}

// Service holds the logic of the component and project reports.
type Service struct {
	files tools.FileFinder
	vite  analyzer.ViteAnalyzer
}

// NewService creates an analysis service over a workspace. A nil vite
// analyzer falls back to the pattern-based one.
func NewService(files tools.FileFinder, vite analyzer.ViteAnalyzer) *Service {
	if vite == nil {
		vite = analyzer.RegexViteAnalyzer{}
	}
	return &Service{files: files, vite: vite}
}

// AnalyzeComponent reports on the component at path.
func (s *Service) AnalyzeComponent(ctx context.Context, p string) (string, error) {
	if !strings.EqualFold(path.Ext(strings.ReplaceAll(p, "\\", "/")), ".svelte") {
		return "", ErrNotSvelteFile
	}

	content, err := s.files.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("reading component %s: %w", p, err)
	}

	a := analyzer.AnalyzeComponent(content)
	observability.LoggerFromContext(ctx).Info("component analyzed",
		"path", p,
		"version", a.SvelteVersion,
		"props", len(a.Props),
		"events", len(a.Events))

	return analyzer.ComponentReport(a), nil
}

// AnalyzeProject reports on routing and the Vite config. Both scans run
// concurrently.
func (s *Service) AnalyzeProject(ctx context.Context) (string, error) {
	var (
		routeFiles, pageFiles []string
		vite                  *analyzer.ViteSuggestions
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		routeFiles, err = s.files.FindFiles(gctx, "src/routes/**")
		if err != nil {
			return fmt.Errorf("scanning src/routes: %w", err)
		}
		pageFiles, err = s.files.FindFiles(gctx, "src/pages/**")
		if err != nil {
			return fmt.Errorf("scanning src/pages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rel, content, ok, err := tools.FindViteConfig(gctx, s.files)
		if err != nil {
			return fmt.Errorf("reading vite config: %w", err)
		}
		if !ok {
			return nil
		}
		sugg, err := s.vite.AnalyzeVite(gctx, path.Base(rel), content)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", rel, err)
		}
		vite = &sugg
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(routeFiles) == 0 && len(pageFiles) == 0 && vite == nil {
		return "", ErrNoProject
	}

	routes := analyzer.AnalyzeRoutes(routeFiles, pageFiles)
	observability.LoggerFromContext(ctx).Info("project analyzed",
		"routing_type", routes.RoutingType,
		"route_files", len(routeFiles),
		"vite_config", vite != nil)

	return analyzer.ProjectReport(&routes, vite), nil
}

// RouteTemplate scaffolds the files of a SvelteKit route.
func (s *Service) RouteTemplate(routePath string) analyzer.RouteTemplate {
	if routePath == "" {
		routePath = "/"
	}
	return analyzer.GenerateRouteTemplate(routePath)
}
