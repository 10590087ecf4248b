package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// TmpSuffix marks the file written before it replaces the data file.
	TmpSuffix = ".tmp"
	// BackupSuffix marks snapshots written by BackupTo.
	BackupSuffix = ".backup"
	// CorruptSuffix marks a data file moved aside by RecoverFileStore.
	CorruptSuffix = ".corrupt"

	filePermissions = 0644
	dirPermissions  = 0755
)

// ErrCorrupt is returned by OpenFileStore when the data file is not a JSON object of strings.
var ErrCorrupt = errors.New("corrupt store file")

// FileStore is a key-value store kept in memory and mirrored to one JSON file.
// Every mutation rewrites the file through a temporary file and a rename.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// OpenFileStore loads path, or starts empty if it does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return s, nil
}

// RecoverFileStore opens path like OpenFileStore, except that a corrupt data
// file is renamed to <path>.<unixnano>.corrupt and the store starts empty.
func RecoverFileStore(path string, log *zap.SugaredLogger) (*FileStore, error) {
	s, err := OpenFileStore(path)
	if !errors.Is(err, ErrCorrupt) {
		return s, err
	}

	aside := fmt.Sprintf("%s.%d%s", path, time.Now().UnixNano(), CorruptSuffix)
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, fmt.Errorf("move corrupt store file aside: %w", rerr)
	}
	log.Named("store").Errorw("data file could not be parsed; moved aside and starting empty",
		"file", path, "movedTo", aside, "error", err)

	return OpenFileStore(path)
}

// Path returns the data file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key. If the file cannot be written the previous value
// is restored and the error returned.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Delete removes key. If the file cannot be written the key is restored.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.flushLocked(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// Keys returns every key in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.data), nil
}

// flushLocked writes the store to disk (caller must hold the write lock).
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	tmpFile := s.path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, filePermissions); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// BackupTo writes a timestamped snapshot of the store into dir and returns its path.
func (s *FileStore) BackupTo(dir string) (string, error) {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), filepath.Base(s.path), BackupSuffix)
	backupFile := filepath.Join(dir, name)
	if err := os.WriteFile(backupFile, data, filePermissions); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backupFile, nil
}

// PruneBackups keeps the newest keep snapshots of this store in dir and removes
// the rest. It returns how many were removed. keep <= 0 keeps everything.
func (s *FileStore) PruneBackups(dir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("list backups: %w", err)
	}

	suffix := "_" + filepath.Base(s.path) + BackupSuffix
	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) <= keep {
		return 0, nil
	}

	// Names start with a nanosecond timestamp of equal width, so lexical order is age order.
	sort.Strings(backups)
	removed := 0
	for _, name := range backups[:len(backups)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("remove backup %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
