package document

import "testing"

func TestFileKindFromURI(t *testing.T) {
	cases := []struct {
		uri  string
		want FileKind
	}{
		{"file:///site/web/modules/custom/foo/src/Controller/FooController.php", FileKindPHP},
		{"file:///site/web/modules/custom/foo/foo.module", FileKindPHP},
		{"file:///site/web/modules/custom/foo/foo.theme", FileKindPHP},
		{"file:///site/web/modules/custom/foo/foo.install", FileKindPHP},
		{"file:///site/web/modules/custom/foo/foo.services.yml", FileKindYAML},
		{"file:///site/web/modules/custom/foo/foo.routing.yml", FileKindYAML},
		{"file:///site/README.md", FileKindUnknown},
		{"file:///site/composer.json", FileKindUnknown},
	}

	for _, c := range cases {
		if got := FileKindFromURI(c.uri); got != c.want {
			t.Errorf("FileKindFromURI(%q) = %v, want %v", c.uri, got, c.want)
		}
	}
}

func TestNewDocumentClassifiesKind(t *testing.T) {
	doc := New("file:///a.php", []byte("<?php"), 1)
	if doc.Kind != FileKindPHP {
		t.Fatalf("Kind = %v, want FileKindPHP", doc.Kind)
	}
	if doc.Version != 1 {
		t.Fatalf("Version = %d, want 1", doc.Version)
	}
}

func TestSetContentBumpsVersion(t *testing.T) {
	doc := New("file:///a.yml", []byte("a: b"), 1)
	doc.SetContent([]byte("a: c"), 2)
	if doc.Version != 2 {
		t.Fatalf("Version = %d, want 2", doc.Version)
	}
	if string(doc.Content) != "a: c" {
		t.Fatalf("Content = %q, want %q", doc.Content, "a: c")
	}
}
