package analyzer

import (
	"fmt"
	"strings"
)

// RouteTemplate holds the generated sources of a SvelteKit route.
type RouteTemplate struct {
	Page   string // +page.svelte
	Server string // +page.server.ts
}

// Files maps file names to sources.
func (t RouteTemplate) Files() map[string]string {
	return map[string]string{
		"+page.svelte":    t.Page,
		"+page.server.ts": t.Server,
	}
}

// GenerateRouteTemplate scaffolds a route for a path such as /users/[id].
func GenerateRouteTemplate(routePath string) RouteTemplate {
	params := routeParams(routePath)
	title := "SvelteKit Route"
	if routePath != "/" {
		title += ": " + routePath
	}

	var page strings.Builder
	page.WriteString("<script lang=\"ts\">\n  import { page } from '$app/stores';\n")
	if len(params) > 0 {
		fmt.Fprintf(&page, "\n  // Access route parameters\n  $: ({ %s } = $page.params);\n", strings.Join(params, ", "))
	}
	page.WriteString("</script>\n\n<svelte:head>\n  <title>SvelteKit Route</title>\n</svelte:head>\n\n")
	fmt.Fprintf(&page, "<div class=\"container\">\n  <h1>%s</h1>\n", title)
	if len(params) > 0 {
		page.WriteString("\n  <div class=\"params\">\n    <h2>Route Parameters:</h2>\n    <ul>\n")
		for _, p := range params {
			fmt.Fprintf(&page, "      <li><strong>%s:</strong> {%s}</li>\n", p, p)
		}
		page.WriteString("    </ul>\n  </div>\n")
	}
	page.WriteString(`</div>

<style>
  .container {
    max-width: 1200px;
    margin: 0 auto;
    padding: 2rem;
  }

  h1 {
    font-size: 2rem;
    margin-bottom: 1rem;
  }

  .params {
    margin-top: 2rem;
    padding: 1rem;
    border: 1px solid #ccc;
    border-radius: 0.5rem;
  }
</style>`)

	var server strings.Builder
	server.WriteString("import type { PageServerLoad } from './$types';\n\n")
	if len(params) > 0 {
		server.WriteString("export const load: PageServerLoad = async ({ params, fetch }) => {\n")
		fmt.Fprintf(&server, "  // Extract parameters\n  const { %s } = params;\n\n", strings.Join(params, ", "))
	} else {
		server.WriteString("export const load: PageServerLoad = async ({ params }) => {\n")
	}
	fmt.Fprintf(&server, "  return {\n    title: '%s',\n", title)
	if len(params) > 0 {
		fmt.Fprintf(&server, "    params: { %s },\n", strings.Join(params, ", "))
	}
	server.WriteString("  };\n};")

	return RouteTemplate{Page: page.String(), Server: server.String()}
}
