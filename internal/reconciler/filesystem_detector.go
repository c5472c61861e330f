package reconciler

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wsdlsync/internal/target"
	"wsdlsync/pkg/logging"
)

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	".git":         true,
	".vs":          true,
	".idea":        true,
	"node_modules": true,
	"bin":          true,
	"obj":          true,
}

// FilesystemDetector implements ChangeDetector for params documents.
//
// It watches basePath and every directory below it with fsnotify, adds
// watches for directories created later, and emits debounced change events
// for paths that match target.ConfigPattern.
type FilesystemDetector struct {
	mu sync.RWMutex

	// basePath is the workspace root
	basePath string

	// watcher is the fsnotify watcher instance
	watcher *fsnotify.Watcher

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	// pendingEvents tracks pending debounced events
	pendingEvents map[string]*debounceEntry

	// stopCh signals shutdown
	stopCh chan struct{}

	// running indicates if the detector is active
	running bool
}

// debounceEntry tracks a pending event for debouncing.
type debounceEntry struct {
	event     ChangeEvent
	timer     *time.Timer
	operation ChangeOperation
}

// NewFilesystemDetector creates a new filesystem change detector.
func NewFilesystemDetector(basePath string, debounceInterval time.Duration) *FilesystemDetector {
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}

	return &FilesystemDetector{
		basePath:         basePath,
		debounceInterval: debounceInterval,
		pendingEvents:    make(map[string]*debounceEntry),
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching for filesystem changes.
func (d *FilesystemDetector) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return err
	}

	d.watcher = watcher
	d.running = true
	d.stopCh = make(chan struct{})
	d.mu.Unlock()

	if err := d.addTree(d.basePath, nil); err != nil {
		_ = d.Stop()
		return err
	}

	go d.processEvents(ctx, watcher, changes)

	logging.Info("FilesystemDetector", "Started watching %s for params documents", d.basePath)
	return nil
}

// addTree watches root and every directory below it. When found is not nil
// it receives every params document already present.
func (d *FilesystemDetector) addTree(root string, found func(path string)) error {
	d.mu.RLock()
	watcher := d.watcher
	d.mu.RUnlock()
	if watcher == nil {
		return nil
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.Debug("FilesystemDetector", "Skipping %s: %v", path, err)
			return nil
		}
		if !entry.IsDir() {
			if found != nil && target.IsConfigPath(path) {
				found(path)
			}
			return nil
		}
		if path != root && skippedDirs[entry.Name()] {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			logging.Warn("FilesystemDetector", "Failed to watch %s: %v", path, err)
			return nil
		}
		logging.Debug("FilesystemDetector", "Watching directory: %s", path)
		return nil
	})
}

// processEvents handles filesystem events and generates change events.
func (d *FilesystemDetector) processEvents(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			d.cleanupPendingEvents()
			return

		case <-d.stopCh:
			d.cleanupPendingEvents()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleFsEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("FilesystemDetector", err, "Filesystem watcher error")
		}
	}
}

// handleFsEvent processes a single filesystem event.
func (d *FilesystemDetector) handleFsEvent(event fsnotify.Event, changes chan<- ChangeEvent) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if skippedDirs[filepath.Base(event.Name)] {
				return
			}
			// Documents may land before the watch on the new directory
			// exists, so report the ones already there.
			_ = d.addTree(event.Name, func(path string) {
				d.debounceEvent(newChangeEvent(path, OperationCreate), changes)
			})
			return
		}
	}

	if !target.IsConfigPath(event.Name) {
		return
	}

	var operation ChangeOperation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		operation = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		operation = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		operation = OperationDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// Rename is treated as delete (the new name will trigger a create)
		operation = OperationDelete
	default:
		return
	}

	d.debounceEvent(newChangeEvent(event.Name, operation), changes)
}

func newChangeEvent(path string, operation ChangeOperation) ChangeEvent {
	return ChangeEvent{
		Path:      filepath.Clean(path),
		Operation: operation,
		Timestamp: time.Now(),
		Source:    SourceFilesystem,
	}
}

// debounceEvent implements event debouncing to handle rapid successive changes.
func (d *FilesystemDetector) debounceEvent(event ChangeEvent, changes chan<- ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := event.Path

	// Cancel existing timer if present
	if entry, ok := d.pendingEvents[key]; ok {
		entry.timer.Stop()

		// Merge operations: Create + Update = Create, Update + Delete = Delete, etc.
		event.Operation = mergeOperations(entry.operation, event.Operation)
	}

	timer := time.AfterFunc(d.debounceInterval, func() {
		d.mu.Lock()
		entry, ok := d.pendingEvents[key]
		if ok {
			delete(d.pendingEvents, key)
		}
		d.mu.Unlock()

		if ok {
			select {
			case changes <- entry.event:
				logging.Debug("FilesystemDetector", "Emitted change event: %s %s",
					entry.event.Operation, entry.event.Path)
			default:
				logging.Warn("FilesystemDetector", "Change event channel full, dropping event for %s",
					entry.event.Path)
			}
		}
	})

	d.pendingEvents[key] = &debounceEntry{
		event:     event,
		timer:     timer,
		operation: event.Operation,
	}
}

// mergeOperations merges two operations into a single logical operation.
func mergeOperations(old, new ChangeOperation) ChangeOperation {
	if old == OperationCreate {
		if new == OperationDelete {
			return OperationDelete
		}
		// Create + Update = Create
		return OperationCreate
	}

	if old == OperationUpdate && new == OperationDelete {
		return OperationDelete
	}

	return new
}

// cleanupPendingEvents cancels all pending debounce timers.
func (d *FilesystemDetector) cleanupPendingEvents() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, entry := range d.pendingEvents {
		entry.timer.Stop()
	}
	d.pendingEvents = make(map[string]*debounceEntry)
}

// Stop gracefully stops the filesystem detector.
func (d *FilesystemDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.running = false
	close(d.stopCh)

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			logging.Error("FilesystemDetector", err, "Error closing filesystem watcher")
		}
		d.watcher = nil
	}

	logging.Info("FilesystemDetector", "Stopped filesystem detector")
	return nil
}

// GetSource returns the change source type.
func (d *FilesystemDetector) GetSource() ChangeSource {
	return SourceFilesystem
}
