package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// FileStore is a MemoryStore mirrored to a JSON file after every mutation.
// It suits single-instance deployments without a database.
type FileStore struct {
	*MemoryStore
	filePath string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates or loads the store file at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	fs := &FileStore{
		MemoryStore: NewMemoryStore(),
		filePath:    path,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	fs.onChange = fs.save
	return fs, nil
}

// load reads the file into the in-memory map, keeping file order.
func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", fs.filePath, err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []models.Application
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", fs.filePath, err)
	}

	for _, app := range entries {
		if _, dup := fs.byID[app.ID]; dup {
			log.Warnf("duplicate application %s in %s, keeping first", app.ID, fs.filePath)
			continue
		}
		if app.StatusHistory == nil {
			app.StatusHistory = []models.StatusHistoryEntry{}
		}
		fs.byID[app.ID] = app
		fs.order = append(fs.order, app.ID)
	}
	log.Infof("loaded %d applications from %s", len(fs.order), fs.filePath)
	return nil
}

// save writes the current records to disk. Caller holds the lock.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.snapshotLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal applications: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), ".applications-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", fs.filePath, err)
	}
	return nil
}
