package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drupalls/internal/document"
	"drupalls/internal/store"
	"drupalls/internal/token"
)

// fixedExtractor always resolves TokenAt to the same token, letting
// resolver tests exercise the dispatch table without a real parse.
type fixedExtractor struct {
	all []*token.Token
	at  *token.Token
}

func (f *fixedExtractor) ExtractAll(content []byte, uri string) ([]*token.Token, error) {
	return f.all, nil
}

func (f *fixedExtractor) TokenAt(content []byte, uri string, p token.Point) (*token.Token, error) {
	return f.at, nil
}

func TestResolveServiceReference(t *testing.T) {
	svcTok := &token.Token{Data: token.ServiceDefinition{Name: "my.svc", Class: "Drupal\\mymodule\\MyService"}}
	yamlExt := &fixedExtractor{all: []*token.Token{svcTok}}
	phpExt := &fixedExtractor{at: &token.Token{Data: token.ServiceReference{Name: "my.svc"}}}

	st := store.New(map[document.FileKind]document.Extractor{
		document.FileKindYAML: yamlExt,
		document.FileKindPHP:  phpExt,
	})
	st.Put("file:///mymodule.services.yml", []byte("my.svc:\n  class: Foo\n"), 1)
	st.Put("file:///a.php", []byte("<?php"), 1)

	r := New(st)
	match, err := r.Resolve("file:///a.php", token.Point{})
	require.NoError(t, err)
	require.NotNil(t, match, "expected a match for a service reference")
	assert.Same(t, svcTok, match.Token)
}

func TestResolveUnknownDocumentReturnsNil(t *testing.T) {
	st := store.New(nil)
	r := New(st)
	match, err := r.Resolve("file:///missing.php", token.Point{})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestResolveTranslationStringSurfacesDirectly(t *testing.T) {
	ts := token.Token{Data: token.TranslationString{Template: "Hello @name", Placeholders: []string{"@name"}}}
	ext := &fixedExtractor{at: &ts}
	st := store.New(map[document.FileKind]document.Extractor{document.FileKindPHP: ext})
	st.Put("file:///a.php", []byte("<?php"), 1)

	r := New(st)
	match, err := r.Resolve("file:///a.php", token.Point{})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Same(t, &ts, match.Token)
}
