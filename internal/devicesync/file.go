package devicesync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// DefaultSettleDelay is how long FileSource waits after the last change
// event before re-reading the file. Editors often write in several steps.
const DefaultSettleDelay = 100 * time.Millisecond

// FileSource reads snapshots from a JSON or YAML document on disk.
type FileSource struct {
	Path        string
	SettleDelay time.Duration

	last []byte
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, SettleDelay: DefaultSettleDelay}
}

// Name implements Source.
func (f *FileSource) Name() string { return "file" }

// ReadSnapshotFile reads and parses the snapshot document at path.
func ReadSnapshotFile(path string) (*moduleconfig.ModuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SyncError{Type: ErrTypeFile, Message: "failed to read snapshot", Source: path, Err: err}
	}
	return parseSnapshot(data, path)
}

func parseSnapshot(data []byte, source string) (*moduleconfig.ModuleConfig, error) {
	config, err := moduleconfig.ParseModuleConfig(data)
	if err != nil {
		return nil, &SyncError{Type: ErrTypeParse, Message: "failed to parse snapshot", Source: source, Err: err}
	}
	return config, nil
}

// Run emits the current file contents, then a new snapshot every time the
// file content changes. The parent directory is watched so atomic
// replace-by-rename writes are seen.
func (f *FileSource) Run(ctx context.Context, emit func(Snapshot)) error {
	path, err := filepath.Abs(f.Path)
	if err != nil {
		return &SyncError{Type: ErrTypeFile, Message: "invalid snapshot path", Source: f.Path, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &SyncError{Type: ErrTypeFile, Message: "failed to create watcher", Source: path, Err: err}
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return &SyncError{Type: ErrTypeFile, Message: "failed to watch snapshot directory", Source: path, Err: err}
	}

	f.last = nil
	f.reload(path, emit)

	settleDelay := f.SettleDelay
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	settle := time.NewTimer(settleDelay)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.Debug("Snapshot file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			settle.Reset(settleDelay)

		case <-settle.C:
			f.reload(path, emit)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Snapshot watcher error", zap.Error(err))
		}
	}
}

// reload emits the file's snapshot unless its content is unchanged.
func (f *FileSource) reload(path string, emit func(Snapshot)) {
	data, err := os.ReadFile(path)
	if err != nil {
		emit(Snapshot{
			Source:   f.Name(),
			Received: time.Now(),
			Err:      &SyncError{Type: ErrTypeFile, Message: "failed to read snapshot", Source: path, Err: err},
		})
		return
	}
	if f.last != nil && bytes.Equal(f.last, data) {
		return
	}
	f.last = data

	config, err := parseSnapshot(data, path)
	if err != nil {
		// the next successful read must be emitted even if it matches
		f.last = nil
		emit(Snapshot{Source: f.Name(), Received: time.Now(), Err: err})
		return
	}

	logging.LogSnapshot(f.Name(), config.Node, len(data))
	emit(Snapshot{Config: config, Source: f.Name(), Received: time.Now()})
}

// String describes the source for status lines.
func (f *FileSource) String() string {
	return fmt.Sprintf("file %s", f.Path)
}
