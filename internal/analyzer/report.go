package analyzer

import (
	"fmt"
	"strings"
)

func writeList(b *strings.Builder, header string, items []string, code bool) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header + "\n\n")
	for _, it := range items {
		if code {
			fmt.Fprintf(b, "- `%s`\n", it)
		} else {
			fmt.Fprintf(b, "- %s\n", it)
		}
	}
	b.WriteString("\n")
}

// ComponentReport renders a component analysis as a markdown document.
func ComponentReport(a ComponentAnalysis) string {
	var b strings.Builder
	b.WriteString("# Svelte Component Analysis\n\n")
	b.WriteString("## Svelte Version\n\n")
	fmt.Fprintf(&b, "Detected version: **%s**\n\n", a.SvelteVersion)

	writeList(&b, "## Props", a.Props, true)
	writeList(&b, "## Events", a.Events, true)
	writeList(&b, "## Stores", a.Stores, true)
	writeList(&b, "## Notes", a.Notes, false)
	writeList(&b, "## Suggestions", a.Suggestions, false)

	return b.String()
}

// ProjectReport renders route and Vite analyses. Either may be nil.
func ProjectReport(routes *RouteAnalysis, vite *ViteSuggestions) string {
	var b strings.Builder
	b.WriteString("# SvelteKit Project Analysis\n\n")

	if routes != nil {
		b.WriteString("## Routing\n\n")
		fmt.Fprintf(&b, "Routing type: **%s**\n\n", routes.RoutingType)
		writeList(&b, "### Route Parameters", routes.Parameters, true)
		writeList(&b, "### Routing Notes", routes.Notes, false)
		writeList(&b, "### Routing Suggestions", routes.Suggestions, false)
	}

	if vite != nil {
		b.WriteString("## Vite Configuration\n\n")
		writeList(&b, "### SvelteKit Configuration", vite.SvelteKit, false)
		writeList(&b, "### Performance Optimization", vite.Performance, false)
		writeList(&b, "### Development Experience", vite.DevExperience, false)
		writeList(&b, "### General Suggestions", vite.General, false)
	}

	return b.String()
}
