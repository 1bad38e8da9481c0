// Package codeaction implements the single code action drupalls offers:
// turning a t('Hello @name') translation call into the placeholder-args
// array Drupal's t() signature expects.
package codeaction

import (
	"fmt"
	"strings"

	"drupalls/internal/document"
	"drupalls/internal/token"
)

// TextEdit is a single range replacement in a document, the same shape the
// editor protocol's WorkspaceEdit carries.
type TextEdit struct {
	Range   token.Range
	NewText string
}

// Action is one offered code action: a title plus the edit it applies.
type Action struct {
	Title string
	Edit  TextEdit
}

// ForTranslationString returns the "Add translation placeholders" code
// action for tok if it is a TranslationString with at least one
// placeholder, or nil otherwise. The token spans the whole t() call, so the
// edit inserts a `, ['@name' => '', ...]` argument list one column before
// the token's end, i.e. immediately before the call's closing parenthesis.
func ForTranslationString(tok *token.Token) *Action {
	if tok == nil {
		return nil
	}
	ts, ok := tok.Data.(token.TranslationString)
	if !ok || len(ts.Placeholders) == 0 {
		return nil
	}

	pairs := make([]string, len(ts.Placeholders))
	for i, p := range ts.Placeholders {
		pairs[i] = fmt.Sprintf("'%s' => ''", p)
	}
	newText := fmt.Sprintf(", [%s]", strings.Join(pairs, ", "))

	insertAt := token.Point{
		Row:    tok.Range.EndPoint.Row,
		Column: tok.Range.EndPoint.Column - 1,
	}

	return &Action{
		Title: "Add translation placeholders",
		Edit: TextEdit{
			Range: token.Range{
				StartByte:  tok.Range.EndByte,
				EndByte:    tok.Range.EndByte,
				StartPoint: insertAt,
				EndPoint:   insertAt,
			},
			NewText: newText,
		},
	}
}

// ForCursor resolves the token under the cursor in doc via extractor and
// returns every code action applicable at that position. Only
// ForTranslationString currently contributes one, but callers iterate a
// slice so a second action type is a pure addition.
func ForCursor(doc *document.Document, extractor document.Extractor, p token.Point) ([]*Action, error) {
	tok, err := extractor.TokenAt(doc.Content, doc.URI, p)
	if err != nil || tok == nil {
		return nil, err
	}

	var actions []*Action
	if a := ForTranslationString(tok); a != nil {
		actions = append(actions, a)
	}
	return actions, nil
}
