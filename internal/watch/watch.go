// Package watch reports board documents modified on disk by someone other
// than the board's own saver.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of write events into one check.
const DefaultDebounce = 200 * time.Millisecond

// ChangeHandler is called with the path of a document whose content differs
// from what the board last wrote.
type ChangeHandler func(path string)

// KnownContent returns the content the board itself last wrote to path.
type KnownContent func() string

// Watcher watches board documents. fsnotify watches directories, so each
// document's parent directory is added and events are filtered by path.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeHandler
	debounce time.Duration

	mu       sync.Mutex
	watching map[string]KnownContent // abs path -> known content
	timers   map[string]*time.Timer
	dirs     map[string]int
}

// New creates a watcher and starts its event loop.
func New(onChange ChangeHandler) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  watcher,
		onChange: onChange,
		debounce: DefaultDebounce,
		watching: make(map[string]KnownContent),
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]int),
	}

	go w.watchLoop()

	return w, nil
}

// SetDebounce changes the debounce delay. Call before watching anything.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Watch starts watching path. known is consulted on every change.
func (w *Watcher) Watch(path string, known KnownContent) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watching[absPath]; !ok {
		if w.dirs[dir] == 0 {
			if err := w.watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
	}
	w.watching[absPath] = known
	return nil
}

// Unwatch stops watching path.
func (w *Watcher) Unwatch(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watching[absPath]; !ok {
		return
	}
	delete(w.watching, absPath)
	if t, ok := w.timers[absPath]; ok {
		t.Stop()
		delete(w.timers, absPath)
	}
	dir := filepath.Dir(absPath)
	if w.dirs[dir]--; w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.mu.Lock()
			if _, watched := w.watching[absPath]; watched {
				if t, exists := w.timers[absPath]; exists {
					t.Stop()
				}
				w.timers[absPath] = time.AfterFunc(w.debounce, func() { w.check(absPath) })
			}
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("board watcher: watcher error: %v", err)
		}
	}
}

// check compares the document on disk with what the board last wrote.
func (w *Watcher) check(absPath string) {
	w.mu.Lock()
	known, watched := w.watching[absPath]
	delete(w.timers, absPath)
	w.mu.Unlock()
	if !watched {
		return
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		log.Printf("board watcher: read file %s: %v", absPath, err)
		return
	}
	if known != nil && string(content) == known() {
		return
	}
	log.Printf("board watcher: %s changed outside the board", absPath)
	if w.onChange != nil {
		w.onChange(absPath)
	}
}
