package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/theta"
)

const header = "language-version: 1.1.0\nencoding-version: 1.0.0\n---\n"

// writeModule writes module source under root at the path its dotted name
// implies.
func writeModule(t *testing.T, root string, name, body string) {
	t.Helper()
	rel := filepath.Join(append([]string{root}, splitName(name)...)...) + Extension
	if err := os.MkdirAll(filepath.Dir(rel), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rel, []byte(header+body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func splitName(name string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	return parts
}

func TestLoadGraphFollowsImports(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "com.example.ids", "type Id = Long")
	writeModule(t, root, "com.example.user",
		"import com.example.ids\ntype User = { id: com.example.ids.Id }")

	graph, err := New(root).LoadAndValidate("com.example.user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(graph) != 2 {
		t.Fatalf("expected 2 modules in the graph, got %d", len(graph))
	}
}

func TestLoadGraphToleratesImportCycles(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a", "import b\ntype X = Int")
	writeModule(t, root, "b", "import a\ntype Y = a.X")

	graph, err := New(root).LoadGraph("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(graph) != 2 {
		t.Fatalf("expected both modules loaded exactly once, got %d", len(graph))
	}
}

func TestMissingModule(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	_, err := New(first, second).LoadGraph("com.example.nothing")
	var missing *theta.MissingModule
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingModule, got %T (%v)", err, err)
	}
	if missing.Name != ast.ModuleName("com.example.nothing") {
		t.Errorf("unexpected module name %s", missing.Name)
	}
	if len(missing.Path) != 2 || missing.Path[0] != first || missing.Path[1] != second {
		t.Errorf("error must carry the whole search path, got %v", missing.Path)
	}
}

func TestSearchPathOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeModule(t, first, "m", "type FromFirst = Int")
	writeModule(t, second, "m", "type FromSecond = Int")

	graph, err := New(first, second).LoadGraph("m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := graph[0].Definition("FromFirst"); !ok {
		t.Error("expected the first search root to win")
	}
}

func TestParseErrorsPropagate(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "broken", "type = Int")

	_, err := New(root).LoadGraph("broken")
	var pErr *theta.ParseError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected ParseError, got %T (%v)", err, err)
	}
}

func TestValidationErrorsPropagate(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "m", "type R = { id: Int, id: Int }")

	_, err := New(root).LoadAndValidate("m")
	var invalid *theta.InvalidModule
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidModule, got %T (%v)", err, err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "theta.yaml")
	content := "path:\n  - schemas\n  - vendor/schemas\nmodules:\n  - com.example.user\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Path) != 2 || cfg.Path[1] != "vendor/schemas" {
		t.Errorf("unexpected path: %v", cfg.Path)
	}
	if len(cfg.Modules) != 1 || cfg.Modules[0] != "com.example.user" {
		t.Errorf("unexpected modules: %v", cfg.Modules)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var ioErr *theta.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %T (%v)", err, err)
	}
}
