package loader

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/validator"
)

type watchResult struct {
	graph validator.Graph
	err   error
}

// startWatcher runs a watcher over root in the background and returns the
// result channel fed by its callback.
func startWatcher(t *testing.T, root string, modules ...ast.ModuleName) (*Watcher, chan watchResult) {
	t.Helper()
	w, err := NewWatcher(New(root), modules, zerolog.Nop())
	if err != nil {
		t.Skipf("fsnotify not supported: %v", err)
	}
	results := make(chan watchResult, 8)
	go w.Run(func(graph validator.Graph, err error) {
		results <- watchResult{graph: graph, err: err}
	})
	return w, results
}

func awaitResult(t *testing.T, results chan watchResult) watchResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for watch callback")
		return watchResult{}
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "m", "type A = Int")

	w, results := startWatcher(t, root, "m")
	defer w.Close()

	first := awaitResult(t, results)
	if first.err != nil {
		t.Fatalf("initial load failed: %v", first.err)
	}
	if len(first.graph) != 1 {
		t.Fatalf("expected 1 module in the initial graph, got %d", len(first.graph))
	}

	writeModule(t, root, "m", "type A = Int\ntype B = String")

	// editors may produce several events per save; wait for the reload
	// that saw the new definition
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.err != nil {
				continue
			}
			if _, ok := r.graph[0].Definition("B"); ok {
				return
			}
		case <-deadline:
			t.Fatal("watcher never reported the updated module")
		}
	}
}

func TestWatcherReportsErrors(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "m", "type A = Int")

	w, results := startWatcher(t, root, "m")
	defer w.Close()

	if first := awaitResult(t, results); first.err != nil {
		t.Fatalf("initial load failed: %v", first.err)
	}

	writeModule(t, root, "m", "type A = { id: Int, id: Int }")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.err != nil {
				return
			}
		case <-deadline:
			t.Fatal("watcher never reported the validation error")
		}
	}
}
