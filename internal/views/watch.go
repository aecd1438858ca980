package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch re-parses templates whenever an .html file under the template
// directory changes. It blocks until ctx is cancelled. Without WithDir
// there is nothing to watch and Watch returns immediately.
func (this *Renderer) Watch(ctx context.Context) error {
	if this.dir == "" {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify init: %w", err)
	}
	defer fsw.Close()

	if err := this.watchTree(fsw); err != nil {
		return err
	}
	this.log.Verbose("Watching templates in %s", this.dir)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fsw.Add(event.Name)
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".html") {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, this.reloadAndLog)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			this.log.Warn("template watcher: %v", err)
		}
	}
}

func (this *Renderer) watchTree(fsw *fsnotify.Watcher) error {
	return filepath.WalkDir(this.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fsw.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		return nil
	})
}

func (this *Renderer) reloadAndLog() {
	if err := this.Reload(); err != nil {
		this.log.Error("template reload: %v", err)
		return
	}
	this.log.Success("Templates reloaded")
}
