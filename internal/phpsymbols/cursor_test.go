package phpsymbols

import (
	"reflect"
	"testing"

	"drupalls/internal/token"
)

func TestTranslationPlaceholders(t *testing.T) {
	cases := []struct {
		template string
		want     []string
	}{
		{"Hello @name, you have %count new messages (:url).", []string{"@name", "%count", ":url"}},
		{"No placeholders here.", nil},
		{"@a@b", []string{"@a", "@b"}},
	}
	for _, c := range cases {
		got := translationPlaceholders(c.template)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("translationPlaceholders(%q) = %v, want %v", c.template, got, c.want)
		}
	}
}

func TestExtractServiceNameFromCall(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{`\Drupal::service('entity_type.manager')`, "entity_type.manager"},
		{`Drupal::service("current_user")`, "current_user"},
		{"no service call here", ""},
	}
	for _, c := range cases {
		if got := extractServiceNameFromCall(c.text); got != c.want {
			t.Errorf("extractServiceNameFromCall(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestQualify(t *testing.T) {
	if got := qualify("", "Foo"); got != token.QualifiedName("Foo") {
		t.Errorf("qualify(empty) = %q", got)
	}
	if got := qualify(`Drupal\node`, "NodeForm"); got != token.QualifiedName(`Drupal\node\NodeForm`) {
		t.Errorf("qualify() = %q", got)
	}
}

func TestExtractArgumentID(t *testing.T) {
	cases := []struct {
		args string
		want string
	}{
		{`(id = "my_queue")`, "my_queue"},
		{`('node')`, "node"},
		{`(id: "views_bulk_operations")`, ""},
	}
	for _, c := range cases {
		if got := extractArgumentID(c.args); got != c.want {
			t.Errorf("extractArgumentID(%q) = %q, want %q", c.args, got, c.want)
		}
	}
}
