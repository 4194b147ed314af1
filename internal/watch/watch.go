// Package watch re-invokes a parse whenever its source file changes on
// disk, for REPL- and daemon-style front ends that want to reparse a
// grammar file live instead of re-running a CLI command by hand.
//
// Grounded on SeleniaProject-Orizon's internal/runtime/vfs watchers:
// FSNotifyWatcher's fsnotify.Watcher wrapping and event-translation
// loop for the OS-native path, and SimpleWatcher's
// context.CancelFunc-gated goroutine lifecycle for Close/cancellation.
package watch

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Event reports that path changed and carries the file's content as of
// the moment the handler read it back, or the read error if the file
// could not be read (e.g. a remove or a race against a concurrent
// writer).
type Event struct {
	Path string
	Data []byte
	Err  error
}

// FileWatcher watches a single file and delivers an Event to Handler
// every time fsnotify reports a write to it or its creation, reading the file's new
// content before delivering. Mirrors FSNotifyWatcher's
// events-channel-plus-background-loop shape, narrowed from an
// arbitrary set of watched paths to exactly one file.
type FileWatcher struct {
	path    string
	w       *fsnotify.Watcher
	Handler func(Event)

	cancel context.CancelFunc
}

// New creates a FileWatcher for path. The returned watcher does not
// start delivering events until Start is called.
func New(path string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &FileWatcher{path: path, w: w}, nil
}

// Start begins the background loop delivering Events to fw.Handler
// until ctx is done or Close is called. Start must be called at most
// once per FileWatcher.
func (fw *FileWatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	fw.cancel = cancel
	go fw.loop(ctx)
}

func (fw *FileWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fw.deliver(ev.Name)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			if fw.Handler != nil {
				fw.Handler(Event{Path: fw.path, Err: err})
			}
		}
	}
}

func (fw *FileWatcher) deliver(name string) {
	if fw.Handler == nil {
		return
	}
	data, err := os.ReadFile(name)
	fw.Handler(Event{Path: name, Data: data, Err: err})
}

// Close stops the background loop and releases the underlying OS
// watch.
func (fw *FileWatcher) Close() error {
	if fw.cancel != nil {
		fw.cancel()
	}
	return fw.w.Close()
}
