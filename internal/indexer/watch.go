package indexer

import (
	"os"

	"github.com/fsnotify/fsnotify"

	"drupalls/internal/document"
	"drupalls/internal/logging"
)

// Watcher re-indexes individual files on write/create events under
// the workspace root, keeping the store in sync between full rescans.
// Built on the same fsnotify dependency the teacher's config layer already
// carries for its own watch mode.
type Watcher struct {
	fsw     *fsnotify.Watcher
	indexer *Indexer
}

// NewWatcher creates a Watcher rooted at the same workspace as idx, adding
// every directory under root to the underlying fsnotify watch list.
func NewWatcher(idx *Indexer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, indexer: idx}
	if err := w.addDirs(idx.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs(root string) error {
	return walkDirs(root, func(dir string) error {
		return w.fsw.Add(dir)
	})
}

func walkDirs(root string, visit func(dir string) error) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	if err := visit(root); err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == ".git" || name == "vendor" || name == "node_modules" {
			continue
		}
		if err := walkDirs(root+"/"+name, visit); err != nil {
			return err
		}
	}
	return nil
}

// Run blocks, re-indexing changed files as fsnotify reports them, until
// the watcher is closed.
func (w *Watcher) Run() {
	log := logging.Get(logging.CategoryWatch)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event, log)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, log *logging.Logger) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addDirs(event.Name); err != nil {
				log.Warn("failed to watch new directory %s: %v", event.Name, err)
			}
		}
		return
	}

	rel, err := relPath(w.indexer.root, event.Name)
	if err != nil || !w.indexer.matcher.Match(rel) {
		return
	}

	doc, err := w.indexer.indexFile(event.Name)
	if err != nil {
		log.Warn("re-index failed for %s: %v", event.Name, err)
		return
	}
	if doc != nil {
		if existing := w.indexer.store.Get(doc.URI); existing != nil {
			doc.Version = existing.Version + 1
		}
		w.indexer.store.PutAll(map[string]*document.Document{doc.URI: doc})
		log.Debug("re-indexed %s after filesystem change", doc.URI)
	}
}

func relPath(root, path string) (string, error) {
	if len(path) > len(root) && path[:len(root)] == root {
		return path[len(root)+1:], nil
	}
	return path, nil
}

// Close stops the underlying fsnotify watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
