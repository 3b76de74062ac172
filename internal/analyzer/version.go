package analyzer

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// VersionReport is the Svelte version inferred from API usage.
type VersionReport struct {
	Version string // "4", "5", "mixed" or "unknown"
	Notes   []string
}

type versionRule struct {
	match func(string) bool
	note  string
}

func stdRule(pattern, note string) versionRule {
	re := regexp.MustCompile(pattern)
	return versionRule{match: re.MatchString, note: note}
}

// lookbehindRule needs regexp2: RE2 has no lookbehind.
func lookbehindRule(pattern, note string) versionRule {
	re := regexp2.MustCompile(pattern, regexp2.None)
	return versionRule{
		match: func(s string) bool {
			ok, err := re.MatchString(s)
			return err == nil && ok
		},
		note: note,
	}
}

var (
	svelte4Rules = []versionRule{
		stdRule(`\$:.*=`, "Reactive declarations with $: x = y syntax (Svelte 4)"),
		lookbehindRule(`(?<!\$app/stores)/store\.js`, "Likely using Svelte 4 store pattern"),
	}
	svelte5Rules = []versionRule{
		stdRule(`\$state\b`, "Using $state in component (Svelte 5)"),
		stdRule(`\$derived\b`, "Using $derived in component (Svelte 5)"),
		stdRule(`\$effect\b`, "Using $effect in component (Svelte 5)"),
	}
)

func matchingNotes(rules []versionRule, code string) []string {
	var notes []string
	for _, r := range rules {
		if r.match(code) {
			notes = append(notes, r.note)
		}
	}
	return notes
}

// DetectVersion classifies code as Svelte 4, 5 or a mix of both.
func DetectVersion(code string) VersionReport {
	v4 := matchingNotes(svelte4Rules, code)
	v5 := matchingNotes(svelte5Rules, code)

	switch {
	case len(v4) > 0 && len(v5) == 0:
		return VersionReport{Version: "4"}
	case len(v5) > 0 && len(v4) == 0:
		return VersionReport{Version: "5"}
	case len(v4) > 0 && len(v5) > 0:
		notes := []string{"Warning: Mixed Svelte 4 and Svelte 5 syntax detected."}
		notes = append(notes, v4...)
		notes = append(notes, v5...)
		return VersionReport{Version: "mixed", Notes: notes}
	default:
		return VersionReport{Version: "unknown"}
	}
}

// UpgradeGuidance lists Svelte 5 migration hints for code.
func UpgradeGuidance(code string) []string {
	var guidance []string

	if strings.Contains(code, "$:") {
		guidance = append(guidance,
			"Consider replacing reactive declarations ($: x = y) with $derived for better type safety.")
	}
	if strings.Contains(code, "svelte/store") {
		guidance = append(guidance,
			"Svelte 5 introduces a new reactive primitive model that replaces svelte/store. Consider using $state and $derived instead.")
	}
	if strings.Contains(code, "beforeUpdate") || strings.Contains(code, "afterUpdate") {
		guidance = append(guidance,
			"Lifecycle methods like beforeUpdate/afterUpdate can be replaced with the new $effect function in Svelte 5.")
	}

	return guidance
}
