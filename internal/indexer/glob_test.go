package indexer

import "testing"

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"**/*.services.yml", "modules/mymodule/mymodule.services.yml", true},
		{"**/*.services.yml", "mymodule.services.yml", true},
		{"**/*.services.yml", "mymodule.routing.yml", false},
		{"**/src/**/*.php", "modules/mymodule/src/Controller/PageController.php", true},
		{"**/src/**/*.php", "modules/mymodule/PageController.php", false},
		{"**/Plugin/**/*.php", "modules/mymodule/src/Plugin/Block/MyBlock.php", true},
		{"**/*Interface.php", "modules/mymodule/src/MyServiceInterface.php", true},
		{"**/*Interface.php", "modules/mymodule/src/MyService.php", false},
	}
	for _, c := range cases {
		if got := matchGlob(c.pattern, c.path); got != c.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestMatcherExcludeTakesPriority(t *testing.T) {
	m := NewMatcher(
		[]string{"**/src/**/*.php"},
		[]string{"**/src/**/*Interface.php"},
	)
	if !m.Match("modules/mymodule/src/MyService.php") {
		t.Error("expected a plain service class to be included")
	}
	if m.Match("modules/mymodule/src/MyServiceInterface.php") {
		t.Error("expected an interface file to be excluded despite matching the include glob")
	}
	if m.Match("modules/mymodule/mymodule.module") {
		t.Error("expected a .module file to be excluded when no include glob names it")
	}
}
