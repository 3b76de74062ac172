package domain

import (
	"context"
	"errors"
	"iter"
)

// ErrFileNotFound is returned when no workspace file matches a name.
var ErrFileNotFound = errors.New("file not found in workspace")

// LanguageModel defines how the core application talks to a language model.
// The returned sequence yields text fragments in production order and stops
// at the first error. It is forward-only and can be ranged over once.
type LanguageModel interface {
	Stream(ctx context.Context, messages []ModelMessage) (iter.Seq2[string, error], error)
}

// ResponseStream is the host surface a participant reply is written to.
type ResponseStream interface {
	Progress(text string)
	Markdown(fragment string)
	Metadata(md map[string]any)
}

// StateStore persists the chat panel log under a single key.
// A missing key loads as an empty log.
type StateStore interface {
	LoadEntries(ctx context.Context, key string) ([]ChatEntry, error)
	SaveEntries(ctx context.Context, key string, entries []ChatEntry) error
}

// Editor gives access to the host's active editor.
type Editor interface {
	ActiveSelection(ctx context.Context) (Selection, bool)
}

// ResolvedFile is the content of a workspace file found by name.
type ResolvedFile struct {
	Content string
	Path    string // workspace-relative, slash separated
}

// FileResolver finds a workspace file by bare name or relative path.
// Absent files are reported with ErrFileNotFound.
type FileResolver interface {
	Resolve(ctx context.Context, name string) (ResolvedFile, error)
}
