package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long rapid writes are coalesced into one re-run.
const watchDebounce = 100 * time.Millisecond

// watch runs filename once and again after every change until ctx is done.
// The result of the last run is the exit code.
func (c *cli) watch(ctx context.Context, filename string) int {
	code := c.executeFile(filename)
	err := watchFile(ctx, filename, func() {
		fmt.Fprintf(c.stderr, "[WATCH] %s changed, re-running\n", filename)
		code = c.executeFile(filename)
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "[WATCH ERROR] %v\n", err)
		return exitUsage
	}
	return code
}

// watchFile calls onChange after writes to path. It watches the parent
// directory so editors that replace the file on save are noticed.
func watchFile(ctx context.Context, path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	var lastChange time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if time.Since(lastChange) < watchDebounce {
				continue
			}
			lastChange = time.Now()
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
