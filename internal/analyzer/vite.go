package analyzer

import (
	"context"
	"strings"
)

// ViteSuggestions groups Vite configuration advice by topic.
type ViteSuggestions struct {
	General       []string
	SvelteKit     []string
	Performance   []string
	DevExperience []string
}

func (s ViteSuggestions) Empty() bool {
	return len(s.General)+len(s.SvelteKit)+len(s.Performance)+len(s.DevExperience) == 0
}

// ViteAnalyzer inspects the content of a vite.config file.
type ViteAnalyzer interface {
	AnalyzeVite(ctx context.Context, fileName, content string) (ViteSuggestions, error)
}

// viteFacts records which configuration features a config file sets.
type viteFacts struct {
	build         bool
	rollupOptions bool
	kitPlugin     bool
	server        bool
	optimizeDeps  bool
	ssr           bool
	define        bool
	envPrefix     bool
}

func (f viteFacts) suggestions() ViteSuggestions {
	var s ViteSuggestions

	if !f.build {
		s.Performance = append(s.Performance,
			"Consider configuring build options for better production performance.")
	} else if !f.rollupOptions {
		s.Performance = append(s.Performance,
			"Configure rollupOptions for more fine-grained control over the build.")
	}

	if !f.kitPlugin {
		s.SvelteKit = append(s.SvelteKit,
			"Import SvelteKit's Vite plugin with `import { sveltekit } from \"@sveltejs/kit/vite\"`.")
	}

	if !f.server {
		s.DevExperience = append(s.DevExperience,
			"Configure server options for a better development experience.")
	}

	if !f.optimizeDeps {
		s.Performance = append(s.Performance,
			"Use `optimizeDeps` to control which dependencies are pre-bundled.")
	}

	if !f.ssr {
		s.SvelteKit = append(s.SvelteKit,
			"Consider configuring SSR options for SvelteKit applications.")
	}

	if !f.define && !f.envPrefix {
		s.General = append(s.General,
			"Configure environment variables with `define` or `envPrefix`.")
	}

	return s
}

// AnalyzeViteConfig checks a config source with plain substring rules.
func AnalyzeViteConfig(content string) ViteSuggestions {
	return viteFacts{
		build:         strings.Contains(content, "build: {"),
		rollupOptions: strings.Contains(content, "rollupOptions"),
		kitPlugin:     strings.Contains(content, "@sveltejs/kit/vite"),
		server:        strings.Contains(content, "server: {"),
		optimizeDeps:  strings.Contains(content, "optimizeDeps"),
		ssr:           strings.Contains(content, "ssr: {"),
		define:        strings.Contains(content, "define: {"),
		envPrefix:     strings.Contains(content, "envPrefix"),
	}.suggestions()
}

// RegexViteAnalyzer is the substring-matching ViteAnalyzer.
type RegexViteAnalyzer struct{}

func (RegexViteAnalyzer) AnalyzeVite(_ context.Context, _ string, content string) (ViteSuggestions, error) {
	return AnalyzeViteConfig(content), nil
}
