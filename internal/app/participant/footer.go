package participant

import "strings"

var (
	promptResourceHints   = []string{"resource", "documentation", "docs", "where can i find"}
	responseResourceHints = []string{"refer to the documentation", "you can learn more"}
)

// ShouldAppendResources decides whether a completed reply gets the
// resources footer.
func ShouldAppendResources(isFirstTurn bool, prompt, response string) bool {
	if isFirstTurn {
		return true
	}

	p := strings.ToLower(prompt)
	for _, h := range promptResourceHints {
		if strings.Contains(p, h) {
			return true
		}
	}
	for _, h := range responseResourceHints {
		if strings.Contains(response, h) {
			return true
		}
	}
	return false
}

// ReferenceLink is a documentation link surfaced with every reply.
type ReferenceLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

var ReferenceLinks = []ReferenceLink{
	{URL: "https://svelte.dev/docs", Title: "Svelte Documentation"},
	{URL: "https://kit.svelte.dev/docs", Title: "SvelteKit Documentation"},
}

// ResourcesFooter is the closing markdown block appended to a reply.
func ResourcesFooter() string {
	var b strings.Builder
	b.WriteString("\n\n---\n\n**Resources**\n\n")
	for _, l := range ReferenceLinks {
		b.WriteString("- [" + l.Title + "](" + l.URL + ")\n")
	}
	b.WriteString("- [Svelte 5 migration guide](https://svelte.dev/docs/svelte/v5-migration-guide)\n")
	return b.String()
}
