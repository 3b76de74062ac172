package workspace

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// Index caches the workspace file list. It is rebuilt lazily after the
// watcher reports a create, remove or rename.
type Index struct {
	r *Resolver

	mu    sync.Mutex
	files []string
	stale bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewIndex(r *Resolver) *Index {
	return &Index{r: r, stale: true}
}

// Lookup returns the first indexed file matching name.
func (i *Index) Lookup(ctx context.Context, name string) (string, error) {
	files, err := i.snapshot(ctx)
	if err != nil {
		return "", err
	}
	for _, rel := range files {
		if matchesName(rel, name) {
			return rel, nil
		}
	}
	return "", ErrNotFound
}

// Len returns the number of indexed files, rebuilding when stale.
func (i *Index) Len(ctx context.Context) (int, error) {
	files, err := i.snapshot(ctx)
	return len(files), err
}

func (i *Index) snapshot(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.stale {
		return i.files, nil
	}

	var files []string
	if err := i.r.walk(ctx, func(rel string) bool {
		files = append(files, rel)
		return true
	}); err != nil {
		return nil, err
	}

	i.files = files
	i.stale = false
	observability.LoggerFromContext(ctx).Debug("workspace index rebuilt", "files", len(files))
	return files, nil
}

// Invalidate forces a rebuild on the next lookup.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.stale = true
	i.mu.Unlock()
}

// Watch starts invalidating the index on filesystem changes until Close.
func (i *Index) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	i.watcher = w
	i.done = make(chan struct{})

	if err := i.addRecursive(i.r.root); err != nil {
		w.Close()
		return err
	}

	i.wg.Add(1)
	go i.processEvents()
	return nil
}

func (i *Index) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != i.r.root && i.r.excluded(d.Name()) {
			return filepath.SkipDir
		}
		// Non-fatal, continue
		_ = i.watcher.Add(p)
		return nil
	})
}

func (i *Index) processEvents() {
	defer i.wg.Done()
	log := observability.Logger().With("component", "workspace_index")

	for {
		select {
		case <-i.done:
			return
		case ev, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !i.r.excluded(path.Base(filepath.ToSlash(ev.Name))) {
					_ = i.addRecursive(ev.Name)
				}
			}
			i.Invalidate()
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// Close stops the watcher, if running.
func (i *Index) Close() error {
	if i.watcher == nil {
		return nil
	}
	close(i.done)
	err := i.watcher.Close()
	i.wg.Wait()
	i.watcher = nil
	return err
}
