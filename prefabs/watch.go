package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells the game what to rebuild.
type ChangeKind int

const (
	SceneChanged ChangeKind = iota
	ScriptChanged
)

func (k ChangeKind) String() string {
	if k == ScriptChanged {
		return "script"
	}
	return "scene"
}

type Change struct {
	Path string
	Kind ChangeKind
}

const debounce = 100 * time.Millisecond

// Watcher reports edits to scene and script files. Events is buffered and
// dropped when full; the game drains it once per tick.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// Drain returns every pending change without blocking, collapsing
// duplicates of the same path.
func (w *Watcher) Drain() []Change {
	var out []Change
	seen := map[string]bool{}
	for {
		select {
		case c, ok := <-w.Events:
			if !ok {
				return out
			}
			if seen[c.Path] {
				continue
			}
			seen[c.Path] = true
			out = append(out, c)
		default:
			return out
		}
	}
}

// run reports a path once its events have been quiet for the debounce
// window, so a save made of several writes is seen after the last one.
func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]Change)
	var order []string
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, ok := classify(event)
			if !ok {
				continue
			}
			if _, queued := pending[change.Path]; !queued {
				order = append(order, change.Path)
			}
			pending[change.Path] = change
			timer.Reset(debounce)
		case <-timer.C:
			for _, path := range order {
				select {
				case w.Events <- pending[path]:
				default:
				}
			}
			clear(pending)
			order = order[:0]
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(event fsnotify.Event) (Change, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return Change{}, false
	}
	switch {
	case isSpecFile(event.Name):
		return Change{Path: event.Name, Kind: SceneChanged}, true
	case isScriptFile(event.Name):
		return Change{Path: event.Name, Kind: ScriptChanged}, true
	}
	return Change{}, false
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
