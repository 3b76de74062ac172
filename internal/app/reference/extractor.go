// Package reference parses inline reference markers out of a prompt.
//
// Supported markers:
//
//	#file:<name>                 a workspace file, by name or relative path
//	#selection:                  the active editor selection
//	#line:<n>[:<col>] in <name>  a position inside a file
package reference

import (
	"regexp"
	"strconv"
	"strings"
)

// LineRef points at a line (and optionally a column) of a file.
type LineRef struct {
	File   string
	Line   int
	Column *int
}

// Bundle holds every reference found in one prompt, in prompt order.
type Bundle struct {
	Files        []string
	HasSelection bool
	Lines        []LineRef
}

// Empty reports whether no reference marker was found.
func (b Bundle) Empty() bool {
	return len(b.Files) == 0 && !b.HasSelection && len(b.Lines) == 0
}

// DistinctFiles returns the file names without repeats, first occurrence first.
func (b Bundle) DistinctFiles() []string {
	seen := make(map[string]struct{}, len(b.Files))
	out := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Extractor turns a prompt into a Bundle. Implementations never fail.
type Extractor interface {
	Extract(prompt string) Bundle
}

var (
	fileRe = regexp.MustCompile(`#file:(\S+)`)
	lineRe = regexp.MustCompile(`#line:(\d+)(?::(\d+))? in (\S+)`)
)

const selectionMarker = "#selection:"

// RegexExtractor is the pattern-matching Extractor.
type RegexExtractor struct{}

func (RegexExtractor) Extract(prompt string) Bundle {
	return Extract(prompt)
}

// Extract scans prompt for reference markers. Matching is case-sensitive.
func Extract(prompt string) Bundle {
	var b Bundle

	for _, m := range fileRe.FindAllStringSubmatch(prompt, -1) {
		b.Files = append(b.Files, m[1])
	}

	b.HasSelection = strings.Contains(prompt, selectionMarker)

	for _, m := range lineRe.FindAllStringSubmatch(prompt, -1) {
		line, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ref := LineRef{File: m[3], Line: line}
		if m[2] != "" {
			if col, err := strconv.Atoi(m[2]); err == nil {
				ref.Column = &col
			}
		}
		b.Lines = append(b.Lines, ref)
	}

	return b
}
