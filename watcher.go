package sitefly

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
)

// reloadDebounce coalesces bursts of events (editors often write a file
// several times per save) into one reload.
const reloadDebounce = 150 * time.Millisecond

// watchContent watches root and every directory below it, calling onChange
// after markdown files are created, written, removed or renamed. It returns
// when ctx is cancelled.
func watchContent(ctx context.Context, root string, onChange func(), logger echo.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addTree(w, root, logger); err != nil {
		logger.Warnf("live reload disabled: %v", err)
		<-ctx.Done()
		return nil
	}
	logger.Debugf("watching %s for changes", root)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, ev.Name, logger); err != nil {
						logger.Warnf("watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			logger.Debugf("content changed, reloading browsers")
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher: %v", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func addTree(w *fsnotify.Watcher, root string, logger echo.Logger) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			logger.Debugf("watch: skipping %s: %v", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
