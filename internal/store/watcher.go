package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches the note file for changes made by other processes
// (for example `quicknote set` while the daemon is running).
// Events that leave the content unchanged are not reported.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	logger   *slog.Logger
	onChange func()
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	lastHash uint64
}

// NewFileWatcher creates a new file watcher for the note file at filePath.
func NewFileWatcher(filePath string, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher:  watcher,
		filePath: filePath,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked when the note file is written or replaced.
// The callback runs on the watcher goroutine.
func (fw *FileWatcher) SetChangeCallback(callback func()) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.onChange = callback
}

// Start begins watching the file for changes.
// If the note directory does not exist yet its parent is watched until it appears.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.lastHash, _ = fw.contentHash()
	fw.mu.Unlock()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(fw.filePath)
	target := dir
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		target = filepath.Dir(dir)
		fw.logger.Debug("note directory missing, watching parent", "dir", dir)
	}
	if err := fw.watcher.Add(target); err != nil {
		return err
	}

	go fw.watch()
	return nil
}

// watch is the main watch loop.
func (fw *FileWatcher) watch() {
	dir := filepath.Dir(fw.filePath)
	filename := filepath.Base(fw.filePath)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// The note directory was created after Start
			if event.Name == dir && event.Has(fsnotify.Create) {
				if err := fw.watcher.Add(dir); err != nil {
					fw.logger.Warn("failed to watch note directory", "dir", dir, "error", err)
				}
				continue
			}

			if filepath.Dir(event.Name) != dir || filepath.Base(event.Name) != filename {
				continue
			}

			// Atomic saves show up as Create (rename over the file)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fw.handleChange(event)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)

		case <-fw.done:
			return
		}
	}
}

// handleChange reports the event if the file content differs from the last
// reported content.
func (fw *FileWatcher) handleChange(event fsnotify.Event) {
	sum, ok := fw.contentHash()
	if !ok {
		return
	}

	fw.mu.Lock()
	if sum == fw.lastHash {
		fw.mu.Unlock()
		fw.logger.Debug("note file touched, content unchanged", "op", event.Op.String())
		return
	}
	fw.lastHash = sum
	callback := fw.onChange
	fw.mu.Unlock()

	fw.logger.Debug("note file changed", "file", fw.filePath, "op", event.Op.String())
	if callback != nil {
		callback()
	}
}

// contentHash hashes the current file content. ok is false if the file
// cannot be read, e.g. between the events of a replace.
func (fw *FileWatcher) contentHash() (uint64, bool) {
	data, err := os.ReadFile(fw.filePath)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return nil
	}

	fw.running = false
	close(fw.done)
	return fw.watcher.Close()
}
