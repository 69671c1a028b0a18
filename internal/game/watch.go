package game

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// FileWatcher polls file modification times and calls onChange once per scan
// in which any watched file appeared, disappeared or was modified.
type FileWatcher struct {
	paths    []string
	interval time.Duration
	onChange func(changed []string)
	last     map[string]time.Time // zero time = missing
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(changed []string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		paths:    append([]string(nil), paths...),
		interval: interval,
		onChange: onChange,
		last:     make(map[string]time.Time, len(paths)),
	}
}

// Run primes the mtime cache and polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	w.scan()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed := w.scan(); len(changed) > 0 && w.onChange != nil {
				slog.Debug("Watched config files changed", "files", changed)
				w.onChange(changed)
			}
		}
	}
}

// scan refreshes the cache and returns the paths whose state differs from the previous scan.
func (w *FileWatcher) scan() []string {
	var changed []string
	for _, p := range w.paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		prev, seen := w.last[p]
		w.last[p] = mt
		if seen && !mt.Equal(prev) {
			changed = append(changed, p)
		}
	}
	return changed
}
