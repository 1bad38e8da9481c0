package phpsymbols

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

func TestExtractAllClassAndMethod(t *testing.T) {
	e := NewExtractor()
	defer e.Close()

	src := `<?php
namespace Drupal\mymodule\Controller;

class PageController {
  public function view() {
    return [];
  }
}
`
	tokens, err := e.ExtractAll([]byte(src), "file:///a.php")
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	var class *token.ClassDefinition
	for _, tok := range tokens {
		if c, ok := tok.Data.(token.ClassDefinition); ok {
			class = &c
		}
	}
	if class == nil {
		t.Fatalf("expected a ClassDefinition token among %d tokens", len(tokens))
	}
	if class.Name != token.QualifiedName(`Drupal\mymodule\Controller\PageController`) {
		t.Errorf("class name = %q", class.Name)
	}
	if _, ok := class.Methods["view"]; !ok {
		t.Errorf("expected method 'view' in class.Methods, got %v", class.Methods)
	}
}

func TestExtractAllHookDefinitionAndReference(t *testing.T) {
	e := NewExtractor()
	defer e.Close()

	src := `<?php

function hook_help($route_name, $arg) {
  return '';
}

/**
 * Implements hook_help().
 */
function mymodule_help(&$help) {
}
`
	tokens, err := e.ExtractAll([]byte(src), "file:///mymodule.module")
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	var sawDefinition, sawReference bool
	for _, tok := range tokens {
		switch d := tok.Data.(type) {
		case token.HookDefinition:
			if d.Name == "hook_help" {
				sawDefinition = true
			}
		case token.HookReference:
			if d.Name == "hook_help" {
				sawReference = true
			}
		}
	}
	if !sawDefinition {
		t.Errorf("expected a HookDefinition named hook_help")
	}
	if !sawReference {
		t.Errorf("expected a HookReference named hook_help from the doc comment")
	}
}
