// Package workspace reads files from the project tree on behalf of the assistant.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// ErrNotFound is returned when no workspace file matches a name.
var ErrNotFound = domain.ErrFileNotFound

// Resolved is the content of a workspace file.
type Resolved = domain.ResolvedFile

// Resolver searches the workspace root for files.
type Resolver struct {
	root    string
	exclude map[string]struct{}
	index   *Index
}

func NewResolver(root string, exclude []string) *Resolver {
	ex := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		ex[e] = struct{}{}
	}
	return &Resolver{root: root, exclude: ex}
}

// UseIndex makes lookups go through idx instead of walking the tree.
func (r *Resolver) UseIndex(idx *Index) {
	r.index = idx
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the first file whose base name or relative path suffix
// equals name, in lexical walk order.
func (r *Resolver) Resolve(ctx context.Context, name string) (Resolved, error) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	if name == "" {
		return Resolved{}, ErrNotFound
	}

	var rel string
	var err error
	if r.index != nil {
		rel, err = r.index.Lookup(ctx, name)
	} else {
		rel, err = r.walkFind(ctx, name)
	}
	if err != nil {
		return Resolved{}, err
	}

	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		return Resolved{}, fmt.Errorf("reading %s: %w", rel, err)
	}

	observability.LoggerFromContext(ctx).Debug("resolved workspace file", "name", name, "path", rel)
	return Resolved{Content: string(data), Path: rel}, nil
}

func (r *Resolver) walkFind(ctx context.Context, name string) (string, error) {
	var found string
	err := r.walk(ctx, func(rel string) bool {
		if matchesName(rel, name) {
			found = rel
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

// FindFiles returns every workspace file matching any of the glob patterns.
// Patterns are slash separated; "**" matches any number of directories.
func (r *Resolver) FindFiles(ctx context.Context, patterns ...string) ([]string, error) {
	var out []string
	err := r.walk(ctx, func(rel string) bool {
		for _, p := range patterns {
			if MatchGlob(p, rel) {
				out = append(out, rel)
				break
			}
		}
		return true
	})
	return out, err
}

// ReadFile reads a workspace-relative file. Absolute paths are read as is.
func (r *Resolver) ReadFile(rel string) (string, error) {
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, filepath.FromSlash(rel))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// walk visits regular files in lexical order until visit returns false.
func (r *Resolver) walk(ctx context.Context, visit func(rel string) bool) error {
	stop := errors.New("stop")
	err := filepath.WalkDir(r.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != r.root && r.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return nil
		}
		if !visit(filepath.ToSlash(rel)) {
			return stop
		}
		return nil
	})
	if errors.Is(err, stop) {
		return nil
	}
	return err
}

func (r *Resolver) excluded(dir string) bool {
	_, ok := r.exclude[dir]
	return ok
}

func matchesName(rel, name string) bool {
	if rel == name || path.Base(rel) == name {
		return true
	}
	return strings.HasSuffix(rel, "/"+name)
}

// MatchGlob matches a slash separated path against a pattern supporting "**".
// A malformed pattern matches nothing.
func MatchGlob(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// StaticEditor serves a selection captured by the host alongside a request.
type StaticEditor struct {
	Selection domain.Selection
}

func (e StaticEditor) ActiveSelection(context.Context) (domain.Selection, bool) {
	return e.Selection, e.Selection.Text != ""
}
