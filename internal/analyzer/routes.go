package analyzer

import (
	"regexp"
	"strings"
)

type RoutingType string

const (
	RoutingPages         RoutingType = "pages"
	RoutingFilesystem    RoutingType = "filesystem"
	RoutingParameterized RoutingType = "parameterized"
	RoutingUnknown       RoutingType = "unknown"
)

// RouteAnalysis describes the routing layout of a SvelteKit project.
type RouteAnalysis struct {
	RoutingType RoutingType
	Notes       []string
	Suggestions []string
	Parameters  []string
}

var paramRe = regexp.MustCompile(`\[([^\]]+)\]`)

// AnalyzeRoutes classifies a project from the files found under src/routes
// and src/pages.
func AnalyzeRoutes(routeFiles, pageFiles []string) RouteAnalysis {
	a := RouteAnalysis{RoutingType: RoutingUnknown}

	switch {
	case len(routeFiles) > 0:
		a.RoutingType = RoutingFilesystem
		a.Notes = append(a.Notes, "Project uses SvelteKit filesystem-based routing in src/routes.")

		var parameterized []string
		for _, f := range routeFiles {
			if strings.Contains(f, "[") && strings.Contains(f, "]") {
				parameterized = append(parameterized, f)
			}
		}
		if len(parameterized) > 0 {
			a.RoutingType = RoutingParameterized
			a.Notes = append(a.Notes, "Project contains parameterized routes.")
			a.Parameters = routeParams(parameterized...)
		}

	case len(pageFiles) > 0:
		a.RoutingType = RoutingPages
		a.Notes = append(a.Notes, "Project uses pages directory for routing.")
		a.Suggestions = append(a.Suggestions,
			"SvelteKit has standardized on the routes directory. Consider migrating from pages to routes.")

	default:
		a.Notes = append(a.Notes,
			"No route structure detected. Make sure your project follows SvelteKit conventions.")
	}

	return a
}

// routeParams returns the distinct [param] names in first-seen order.
func routeParams(paths ...string) []string {
	var params []string
	seen := make(map[string]bool)
	for _, p := range paths {
		for _, m := range paramRe.FindAllStringSubmatch(p, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				params = append(params, m[1])
			}
		}
	}
	return params
}
