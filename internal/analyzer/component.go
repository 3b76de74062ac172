package analyzer

import (
	"regexp"
	"strings"
)

// ComponentAnalysis describes a single .svelte component.
type ComponentAnalysis struct {
	SvelteVersion string // "4" or "5"
	Props         []string
	Events        []string
	Stores        []string
	Imports       []string
	Exports       []string
	HasStyle      bool
	Notes         []string
	Suggestions   []string
}

var (
	propRe     = regexp.MustCompile(`export\s+let\s+(\w+)(\s*=\s*[^;]+)?;`)
	dispatchRe = regexp.MustCompile(`dispatch\s*\(\s*['"](\w+)['"]`)
	storeRe    = regexp.MustCompile(`import\s+\{?\s*(\w+)\s*\}?\s+from\s+['"]svelte/store['"]`)
	importRe   = regexp.MustCompile(`import\s+.+\s+from\s+['"].+['"]`)
	exportRe   = regexp.MustCompile(`export\s+(const|let|function|class)\s+\w+`)
)

// AnalyzeComponent extracts props, events, stores and suggestions from a component source.
func AnalyzeComponent(content string) ComponentAnalysis {
	var a ComponentAnalysis

	if strings.Contains(content, "$state") ||
		strings.Contains(content, "$derived") ||
		strings.Contains(content, "$effect") {
		a.SvelteVersion = "5"
	} else {
		a.SvelteVersion = "4"
	}

	for _, m := range propRe.FindAllStringSubmatch(content, -1) {
		a.Props = append(a.Props, m[1])
	}

	if strings.Contains(content, "createEventDispatcher") {
		a.Notes = append(a.Notes, "Component dispatches events.")
		for _, m := range dispatchRe.FindAllStringSubmatch(content, -1) {
			a.Events = append(a.Events, m[1])
		}
	}

	for _, m := range storeRe.FindAllStringSubmatch(content, -1) {
		a.Stores = append(a.Stores, m[1])
	}

	a.HasStyle = strings.Contains(content, "<style") && strings.Contains(content, "</style>")

	for _, m := range importRe.FindAllString(content, -1) {
		a.Imports = append(a.Imports, strings.TrimSpace(m))
	}
	for _, m := range exportRe.FindAllString(content, -1) {
		a.Exports = append(a.Exports, strings.TrimSpace(m))
	}

	if strings.Contains(content, "<script>") && !strings.Contains(content, `<script lang="ts">`) {
		a.Suggestions = append(a.Suggestions,
			`Consider using TypeScript for better type safety with <script lang="ts">.`)
	}
	if strings.Contains(content, "onMount") && strings.Contains(content, "fetch(") {
		a.Suggestions = append(a.Suggestions,
			"Consider using SvelteKit's data loading pattern with load() functions instead of fetch() in onMount().")
	}

	return a
}

// Findings flattens the analysis into report categories.
func (a ComponentAnalysis) Findings() Findings {
	var f Findings
	f.Add("version", a.SvelteVersion)
	f.Add("props", a.Props...)
	f.Add("events", a.Events...)
	f.Add("stores", a.Stores...)
	f.Add("notes", a.Notes...)
	f.Add("suggestions", a.Suggestions...)
	return f
}
