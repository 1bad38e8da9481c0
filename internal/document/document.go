// Package document defines the in-memory representation of a single
// open or indexed file and the FileKind dispatch used to pick an extractor
// for it.
package document

import (
	"strings"

	"drupalls/internal/token"
)

// FileKind is the closed set of file kinds the server understands.
type FileKind int

const (
	FileKindUnknown FileKind = iota
	FileKindPHP
	FileKindYAML
)

func (k FileKind) String() string {
	switch k {
	case FileKindPHP:
		return "php"
	case FileKindYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FileKindFromURI classifies a document URI by its extension. PHP recognises
// the module/theme/install file extensions Drupal uses for procedural hook
// implementations alongside plain .php files.
func FileKindFromURI(uri string) FileKind {
	switch {
	case hasAnySuffix(uri, ".php", ".module", ".theme", ".install"):
		return FileKindPHP
	case hasAnySuffix(uri, ".yml", ".yaml"):
		return FileKindYAML
	default:
		return FileKindUnknown
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// Document is a single file's content and the tokens last extracted from it.
// A Document is owned by exactly one *store.Store at a time; once published
// there it is treated as read-only, and the store replaces it with a new
// Document on every re-parse instead of mutating it.
type Document struct {
	URI     string
	Kind    FileKind
	Content []byte
	Version int
	Tokens  []*token.Token
}

// New creates a Document for uri with the given initial content, classifying
// its FileKind from the URI but not yet parsing it.
func New(uri string, content []byte, version int) *Document {
	return &Document{
		URI:     uri,
		Kind:    FileKindFromURI(uri),
		Content: content,
		Version: version,
	}
}

// SetContent replaces the document's content and bumps its version. Callers
// must re-parse (via an Extractor) after calling this; SetContent does not
// refresh Tokens itself since the extractor for a Kind lives outside this
// package.
func (d *Document) SetContent(content []byte, version int) {
	d.Content = content
	d.Version = version
}

// Extractor produces the token set for a Document's static form (used to
// populate the document store's definition/reference indexes) and can
// additionally resolve a single token under the cursor, which may surface
// call-expression-derived references that ExtractAll never materializes
// (see the resolver package for why those two questions need separate
// tree walks).
type Extractor interface {
	ExtractAll(content []byte, uri string) ([]*token.Token, error)
	TokenAt(content []byte, uri string, p token.Point) (*token.Token, error)
}
