package yamlsymbols

import (
	"testing"

	"drupalls/internal/token"
)

func TestNewExtractorClose(t *testing.T) {
	e := NewExtractor()
	defer e.Close()
	if e.parser == nil {
		t.Fatal("expected parser to be initialised")
	}
}

func TestExtractAllServiceDefinition(t *testing.T) {
	e := NewExtractor()
	defer e.Close()

	src := "my.svc:\n  class: Drupal\\mymodule\\MyService\n  arguments: ['@entity_type.manager', '@current_user']\n"
	tokens, err := e.ExtractAll([]byte(src), "file:///a.services.yml")
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	var found bool
	for _, tok := range tokens {
		svc, ok := tok.Data.(token.ServiceDefinition)
		if !ok {
			continue
		}
		found = true
		if svc.Name != "my.svc" {
			t.Errorf("service name = %q, want my.svc", svc.Name)
		}
		if svc.Class != token.QualifiedName(`Drupal\mymodule\MyService`) {
			t.Errorf("service class = %q", svc.Class)
		}
	}
	if !found {
		t.Fatalf("expected a ServiceDefinition token among %d tokens", len(tokens))
	}
}

func TestExtractAllRouteDefinition(t *testing.T) {
	e := NewExtractor()
	defer e.Close()

	src := "mymodule.page:\n  path: '/mymodule/{node}'\n  defaults:\n    _controller: '\\Drupal\\mymodule\\Controller\\PageController::view'\n    _title: 'My page'\n"
	tokens, err := e.ExtractAll([]byte(src), "file:///a.routing.yml")
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	var found bool
	for _, tok := range tokens {
		route, ok := tok.Data.(token.RouteDefinition)
		if !ok {
			continue
		}
		found = true
		if route.Name != "mymodule.page" {
			t.Errorf("route name = %q", route.Name)
		}
		if route.Path != "/mymodule/{node}" {
			t.Errorf("route path = %q", route.Path)
		}
		if route.Defaults.Controller == nil {
			t.Fatalf("expected route defaults to carry a controller")
		}
	}
	if !found {
		t.Fatalf("expected a RouteDefinition token among %d tokens", len(tokens))
	}
}

func TestExtractAllPermissionDefinition(t *testing.T) {
	e := NewExtractor()
	defer e.Close()

	src := "administer mymodule:\n  title: 'Administer My Module'\n"
	tokens, err := e.ExtractAll([]byte(src), "file:///a.permissions.yml")
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	var found bool
	for _, tok := range tokens {
		perm, ok := tok.Data.(token.PermissionDefinition)
		if !ok {
			continue
		}
		found = true
		if perm.Title != "Administer My Module" {
			t.Errorf("permission title = %q", perm.Title)
		}
	}
	if !found {
		t.Fatalf("expected a PermissionDefinition token among %d tokens", len(tokens))
	}
}
