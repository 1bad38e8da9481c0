package codeaction

import (
	"strings"
	"testing"

	"drupalls/internal/token"
)

func TestForTranslationStringBuildsPlaceholderArgs(t *testing.T) {
	tok := &token.Token{
		Range: token.Range{
			EndByte:  40,
			EndPoint: token.Point{Row: 2, Column: 30},
		},
		Data: token.TranslationString{
			Template:     "Hello @name, you have %count messages",
			Placeholders: []string{"@name", "%count"},
		},
	}

	action := ForTranslationString(tok)
	if action == nil {
		t.Fatal("expected an action for a translation string with placeholders")
	}
	if !strings.Contains(action.Edit.NewText, "'@name' => ''") {
		t.Errorf("NewText = %q, missing @name placeholder", action.Edit.NewText)
	}
	if !strings.Contains(action.Edit.NewText, "'%count' => ''") {
		t.Errorf("NewText = %q, missing %%count placeholder", action.Edit.NewText)
	}
	if action.Edit.Range.StartPoint.Column != 29 {
		t.Errorf("insertion column = %d, want 29 (one before the call's closing parenthesis)", action.Edit.Range.StartPoint.Column)
	}
}

func TestForTranslationStringNoPlaceholdersReturnsNil(t *testing.T) {
	tok := &token.Token{Data: token.TranslationString{Template: "No placeholders here"}}
	if action := ForTranslationString(tok); action != nil {
		t.Errorf("expected nil action for a string with no placeholders, got %v", action)
	}
}

func TestForTranslationStringWrongKindReturnsNil(t *testing.T) {
	tok := &token.Token{Data: token.ServiceReference{Name: "my.svc"}}
	if action := ForTranslationString(tok); action != nil {
		t.Errorf("expected nil action for a non-translation token, got %v", action)
	}
}
