package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"drupalls/internal/document"
	"drupalls/internal/store"
	"drupalls/internal/token"
)

func TestHoverNilMatch(t *testing.T) {
	assert.Equal(t, "", Hover(nil))
}

func TestHoverServiceDefinition(t *testing.T) {
	match := &store.Match{Token: &token.Token{Data: token.ServiceDefinition{
		Name:  "entity_type.manager",
		Class: "Drupal\\Core\\Entity\\EntityTypeManager",
	}}}
	got := Hover(match)
	assert.Contains(t, got, "entity_type.manager")
	assert.Contains(t, got, "EntityTypeManager")
}

func TestHoverServiceReferenceIncludesDefinitionSource(t *testing.T) {
	doc := document.New("file:///a.services.yml", []byte("my.svc:\n  class: Foo\n"), 1)
	match := &store.Match{
		Document: doc,
		Token: &token.Token{
			Range: token.Range{StartByte: 0, EndByte: uint32(len("my.svc:\n  class: Foo"))},
			Data:  token.ServiceReference{Name: "my.svc"},
		},
	}
	got := Hover(match)
	assert.Contains(t, got, "my.svc")
	assert.Contains(t, got, "file:///a.services.yml")
	assert.Contains(t, got, "class: Foo")
}

func TestHoverHookDefinition(t *testing.T) {
	match := &store.Match{Token: &token.Token{Data: token.HookDefinition{
		Name:       "hook_help",
		Parameters: "$route_name, $arg",
	}}}
	got := Hover(match)
	assert.Contains(t, got, "hook_help")
	assert.Contains(t, got, "$route_name")
}

func TestHoverRouteDefinitionListsPathParameters(t *testing.T) {
	match := &store.Match{Token: &token.Token{Data: token.RouteDefinition{
		Name: "mymodule.canonical",
		Path: "/mymodule/{node}/edit",
	}}}
	got := Hover(match)
	assert.Contains(t, got, "mymodule.canonical")
	assert.Contains(t, got, "node")
}

func TestHoverTranslationString(t *testing.T) {
	match := &store.Match{Token: &token.Token{Data: token.TranslationString{
		Template:     "Hello @name",
		Placeholders: []string{"@name"},
	}}}
	got := Hover(match)
	assert.Contains(t, got, "Hello @name")
	assert.Contains(t, got, "@name")
}
