package loader

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/validator"
)

// Watcher reloads and revalidates a set of root modules whenever a .theta
// file under the loader's search path changes.
type Watcher struct {
	loader *Loader
	roots  []ast.ModuleName
	w      *fsnotify.Watcher
	log    zerolog.Logger
	done   chan struct{}
}

// NewWatcher watches every directory under the loader's search roots.
func NewWatcher(l *Loader, roots []ast.ModuleName, log zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// fsnotify watches are not recursive; register every subdirectory.
	for _, root := range l.path {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			w.Close()
			return nil, err
		}
	}

	return &Watcher{
		loader: l,
		roots:  roots,
		w:      w,
		log:    log,
		done:   make(chan struct{}),
	}, nil
}

// Run blocks, invoking onResult with a fresh load of the root modules after
// every relevant filesystem event, until Close is called. The first load
// happens immediately.
func (wt *Watcher) Run(onResult func(validator.Graph, error)) {
	onResult(wt.loader.LoadAndValidate(wt.roots...))

	for {
		select {
		case <-wt.done:
			return
		case ev, ok := <-wt.w.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			wt.log.Info().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			if ev.Op&fsnotify.Create != 0 {
				// a new directory needs its own watch
				wt.addIfDir(ev.Name)
			}
			onResult(wt.loader.LoadAndValidate(wt.roots...))
		case err, ok := <-wt.w.Errors:
			if !ok {
				return
			}
			wt.log.Error().Err(err).Msg("watch error")
		}
	}
}

// Close stops the watcher and releases its filesystem resources.
func (wt *Watcher) Close() error {
	close(wt.done)
	return wt.w.Close()
}

func (wt *Watcher) addIfDir(path string) {
	if !strings.HasSuffix(path, Extension) {
		if err := wt.w.Add(path); err != nil {
			wt.log.Debug().Err(err).Str("path", path).Msg("could not watch new path")
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(ev.Name, Extension) || ev.Op&fsnotify.Create != 0
}
