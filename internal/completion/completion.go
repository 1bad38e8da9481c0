// Package completion implements the server's completion list: route/service
// name completion when the cursor sits on a reference, hook-skeleton
// snippets in procedural files, and a small set of always-available
// Drupal snippets.
package completion

import (
	"fmt"
	"regexp"
	"strings"

	"drupalls/internal/render"
	"drupalls/internal/store"
	"drupalls/internal/token"
)

// Kind mirrors the editor protocol's CompletionItemKind values this engine
// produces: Reference for cross-file symbol names, Snippet for inserted
// code templates.
type Kind int

const (
	KindReference Kind = iota
	KindSnippet
)

// Item is a single completion candidate.
type Item struct {
	Label         string
	Kind          Kind
	Detail        string
	Documentation string
	InsertText    string // empty means "insert Label verbatim"
	IsSnippet     bool   // true when InsertText carries $0/${n:...} placeholders
}

// Engine produces completion lists against a store.Store.
type Engine struct {
	store *store.Store
}

// New creates a completion Engine backed by st.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Complete returns the completion list for a cursor at p in the document at
// uri. Per original_source's own contract, the cursor is nudged one
// character back first: completion triggers after the character just
// typed, not the (not yet meaningful) character about to be typed.
func (e *Engine) Complete(uri string, p token.Point) ([]Item, error) {
	if p.Column > 0 {
		p.Column--
	}

	items := globalSnippets()

	doc := e.store.Get(uri)
	if doc == nil {
		return items, nil
	}

	extractor := e.store.ExtractorFor(doc.Kind)
	if extractor != nil {
		if tok, err := extractor.TokenAt(doc.Content, uri, p); err == nil && tok != nil {
			switch tok.Data.(type) {
			case token.RouteReference:
				items = append(items, e.routeCompletions()...)
			case token.ServiceReference:
				items = append(items, e.serviceCompletions()...)
			}
		}
	}

	if isProceduralFile(uri) {
		items = append(items, e.hookCompletions(uri)...)
	}

	return items, nil
}

func isProceduralFile(uri string) bool {
	return strings.HasSuffix(uri, ".module") || strings.HasSuffix(uri, ".theme")
}

func (e *Engine) routeCompletions() []Item {
	var items []Item
	for _, doc := range e.store.All() {
		for _, tok := range doc.Tokens {
			route, ok := tok.Data.(token.RouteDefinition)
			if !ok {
				continue
			}
			detail := ""
			if params := route.RouteParameters(); len(params) > 0 {
				detail = fmt.Sprintf("(%s)", strings.Join(params, ", "))
			}
			items = append(items, Item{
				Label:         route.Name,
				Kind:          KindReference,
				Detail:        detail,
				Documentation: render.Hover(&store.Match{Document: doc, Token: tok}),
			})
		}
	}
	return items
}

func (e *Engine) serviceCompletions() []Item {
	var items []Item
	for _, doc := range e.store.All() {
		for _, tok := range doc.Tokens {
			svc, ok := tok.Data.(token.ServiceDefinition)
			if !ok {
				continue
			}
			items = append(items, Item{
				Label:         svc.Name,
				Kind:          KindReference,
				Documentation: render.Hover(&store.Match{Document: doc, Token: tok}),
			})
		}
	}
	return items
}

var hookNameSegmentRe = regexp.MustCompile(`([A-Z][A-Z_]+[A-Z])`)

// hookCompletions offers one snippet per known hook definition, expanding
// into a skeleton implementation named after the current file's module
// name, matching Drupal's "Implements hook_X()" doc-comment convention.
func (e *Engine) hookCompletions(uri string) []Item {
	moduleName := moduleNameFromURI(uri)

	var items []Item
	for _, doc := range e.store.All() {
		for _, tok := range doc.Tokens {
			hook, ok := tok.Data.(token.HookDefinition)
			if !ok {
				continue
			}
			insertText := fmt.Sprintf(
				"/**\n * Implements %s().\n */\nfunction %s_%s(%s) {\n  $0\n}",
				hook.Name,
				moduleName,
				hookNameSegmentRe.ReplaceAllString(strings.TrimPrefix(hook.Name, "hook_"), "${$1}"),
				strings.ReplaceAll(hook.Parameters, "$", "\\$"),
			)
			items = append(items, Item{
				Label:         hook.Name,
				Kind:          KindSnippet,
				Detail:        "hook",
				Documentation: render.Hover(&store.Match{Document: doc, Token: tok}),
				InsertText:    insertText,
				IsSnippet:     true,
			})
		}
	}
	return items
}

func moduleNameFromURI(uri string) string {
	base := uri
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	name, _, found := strings.Cut(base, ".")
	if !found {
		return base
	}
	return name
}

// globalSnippets are always offered, independent of cursor context, the
// same always-on set original_source's get_global_snippets ships.
func globalSnippets() []Item {
	return []Item{
		{
			Label:      "entity-storage",
			Kind:       KindSnippet,
			InsertText: `$storage = $this->entityTypeManager->getStorage('$0');`,
			IsSnippet:  true,
		},
		{
			Label:      "entity-load",
			Kind:       KindSnippet,
			InsertText: `$${1:entity} = $this->entityTypeManager->getStorage('$1')->load($0);`,
			IsSnippet:  true,
		},
		{
			Label: "ihdoc",
			Kind:  KindSnippet,
			InsertText: "/**\n * {@inheritdoc}\n */",
			IsSnippet:  true,
		},
		{
			Label: "batch",
			Kind:  KindSnippet,
			InsertText: "$storage = \\Drupal::entityTypeManager()->getStorage('$0');\n" +
				"if (!isset($sandbox['ids'])) {\n" +
				"  $ids = $storage->getQuery()\n" +
				"    ->accessCheck(FALSE)\n" +
				"    ->execute();\n" +
				"  $sandbox['ids'] = $ids;\n" +
				"  $sandbox['total'] = count($sandbox['ids']);\n" +
				"}\n\n" +
				"$ids = array_splice($sandbox['ids'], 0, 20);\n" +
				"foreach ($storage->loadMultiple($ids) as $entity) {\n" +
				"  $entity->save();\n" +
				"}\n\n" +
				"if ($sandbox['total'] > 0) {\n" +
				"  $sandbox['#finished'] = ($sandbox['total'] - count($sandbox['ids'])) / $sandbox['total'];\n" +
				"}",
			IsSnippet: true,
		},
	}
}
