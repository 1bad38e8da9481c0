// Package indexer walks a Drupal workspace and populates a store.Store with
// every file the configured include/exclude globs select, parsing each one
// with the extractor registered for its document.FileKind.
package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"drupalls/internal/config"
	"drupalls/internal/document"
	"drupalls/internal/logging"
	"drupalls/internal/store"
)

// Indexer performs the initial full-workspace scan and, optionally, keeps
// the store in sync with a live filesystem watch.
type Indexer struct {
	root    string
	matcher *Matcher
	store   *store.Store
	cfg     config.ScanConfig
}

// New creates an Indexer rooted at workspaceRoot, scoped by the scan
// configuration's include/exclude globs and concurrency limit.
func New(workspaceRoot string, cfg config.ScanConfig, st *store.Store) *Indexer {
	return &Indexer{
		root:    workspaceRoot,
		matcher: NewMatcher(cfg.IncludeGlobs, cfg.ExcludeGlobs),
		store:   st,
		cfg:     cfg,
	}
}

// Result summarises a completed scan.
type Result struct {
	FilesIndexed int
	FilesSkipped int
	Errors       []error
}

// ScanWorkspace walks the workspace root, reading and parsing every file the
// matcher selects with bounded concurrency (ScanConfig.MaxConcurrency
// workers), then publishes the parsed documents into the store in one
// locked batch.
func (idx *Indexer) ScanWorkspace(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	timer := logging.StartTimer(logging.CategoryIndexer, "ScanWorkspace")
	logging.Get(logging.CategoryIndexer).Info("[%s] starting workspace scan: %s", runID, idx.root)

	paths, skipped, err := idx.collectPaths()
	if err != nil {
		return nil, err
	}

	docs := make(map[string]*document.Document)
	var mu sync.Mutex
	var errs []error

	sem := make(chan struct{}, maxConcurrency(idx.cfg.MaxConcurrency))
	eg, egCtx := errgroup.WithContext(ctx)

	for _, p := range paths {
		p := p
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			doc, err := idx.indexFile(p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			if doc != nil {
				docs[doc.URI] = doc
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	idx.store.PutAll(docs)

	elapsed := timer.StopWithInfo()
	logging.Get(logging.CategoryIndexer).Info(
		"[%s] workspace scan complete: %d files indexed, %d skipped, %d errors, %v",
		runID, len(docs), skipped, len(errs), elapsed,
	)
	return &Result{FilesIndexed: len(docs), FilesSkipped: skipped, Errors: errs}, nil
}

func maxConcurrency(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}

// collectPaths walks the workspace root and returns every regular file path
// (relative-to-root form preserved for glob matching, absolute form
// returned) that the matcher selects.
func (idx *Indexer) collectPaths() (paths []string, skipped int, err error) {
	err = filepath.Walk(idx.root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			logging.Get(logging.CategoryIndexer).Warn("walk error at %s: %v", path, walkErr)
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if name != "." && (name == ".git" || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(idx.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.Size() > idx.cfg.MaxFileBytes {
			logging.Get(logging.CategoryIndexer).Warn("skipping oversized file: %s (%d bytes)", rel, info.Size())
			skipped++
			return nil
		}

		if !idx.matcher.Match(rel) {
			skipped++
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	return paths, skipped, err
}

func (idx *Indexer) indexFile(path string) (*document.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		logging.Get(logging.CategoryIndexer).Warn("failed to read %s: %v", path, err)
		return nil, err
	}

	uri := "file://" + path
	kind := document.FileKindFromURI(uri)
	extractor := idx.store.ExtractorFor(kind)

	doc := document.New(uri, content, 1)
	if extractor != nil {
		tokens, err := extractor.ExtractAll(content, uri)
		if err != nil {
			logging.Get(logging.CategoryIndexer).Warn("parse failed for %s: %v", uri, err)
		}
		doc.Tokens = tokens
	}
	return doc, nil
}
