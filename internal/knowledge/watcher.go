package knowledge

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the runbook file whenever it changes on disk, so operators
// can edit corrective-action steps without restarting the dashboard. It
// watches the file's directory because editors typically replace the file
// rather than write it in place. Blocks until ctx is cancelled.
func (b *Base) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	b.log.WithField("path", path).Info("Watching runbook file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := b.LoadFile(path); err != nil {
				b.log.WithError(err).WithField("path", path).Warn("Runbook reload failed, keeping previous entries")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.WithError(err).Warn("Runbook watcher error")
		}
	}
}
