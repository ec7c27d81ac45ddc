package audio

import (
	"path/filepath"
	"strings"

	"wav2hls/logger"

	"github.com/fsnotify/fsnotify"
)

// watchSegments reports every new segment file created in dir while the transcoder runs.
// The returned stop function closes the watcher and waits for the event loop to drain.
// Watch failures only cost progress output, so they are logged and swallowed.
func watchSegments(dir, playlistName string, onSegment func(name string)) (stop func()) {
	noop := func() {}
	if onSegment == nil {
		return noop
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("segment watcher unavailable", logger.ErrorField(err))
		return noop
	}
	if err := watcher.Add(dir); err != nil {
		logger.Warn("cannot watch output directory", logger.String("dir", dir), logger.ErrorField(err))
		watcher.Close()
		return noop
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Base(event.Name)
				if name == playlistName || strings.HasSuffix(name, ".tmp") || seen[name] {
					continue
				}
				seen[name] = true
				onSegment(name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("segment watcher error", logger.ErrorField(err))
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
	}
}
