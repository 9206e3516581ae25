// Package store provides durable single-slot storage for the quicknote note.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/jmylchreest/quicknote/internal/model"
)

// NoteInfo describes the persisted note file.
type NoteInfo struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// NoteStore reads and writes the note file.
// All operations on a NoteStore are serialized; writes replace the file
// through a rename so readers never observe a partial write.
type NoteStore struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

// NewNoteStore creates a NoteStore backed by the file at path.
// The file and its parent directory are created lazily on first Save.
func NewNoteStore(path string, logger *slog.Logger) *NoteStore {
	return NewNoteStoreFs(afero.NewOsFs(), path, logger)
}

// NewNoteStoreFs creates a NoteStore on the given filesystem.
func NewNoteStoreFs(fs afero.Fs, path string, logger *slog.Logger) *NoteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteStore{
		fs:     fs,
		path:   path,
		logger: logger,
	}
}

// Path returns the path of the note file.
func (s *NoteStore) Path() string {
	return s.path
}

// Save overwrites the note with content.
func (s *NoteStore) Save(content string) error {
	data, err := model.MarshalNote(model.NewNote(content))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %w", model.ErrIO, dir, err)
	}

	if err := writeFileAtomic(s.fs, s.path, data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", model.ErrIO, s.path, err)
	}

	s.logger.Debug("note saved", "path", s.path, "bytes", len(data))
	return nil
}

// Load returns the note content. A missing file is the initial state and
// yields an empty string; a file that does not decode is an error.
func (s *NoteStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: failed to read %s: %w", model.ErrIO, s.path, err)
	}

	n, err := model.UnmarshalNote(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", s.path, err)
	}
	return n.Content, nil
}

// Stat returns information about the note file without reading it.
func (s *NoteStore) Stat() (NoteInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := NoteInfo{Path: s.path}
	fi, err := s.fs.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return info, nil
		}
		return info, fmt.Errorf("%w: stat %s: %w", model.ErrIO, s.path, err)
	}

	info.Exists = true
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()
	return info, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it over path.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return err
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return err
	}
	return nil
}
