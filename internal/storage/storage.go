// Package storage provides file persistence for uploaded assets.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStore persists uploaded files and returns relative paths for later
// retrieval.
type FileStore interface {
	// Save writes the bytes under a name derived from desiredName and
	// returns the relative path.
	Save(data []byte, desiredName string) (string, error)
	// Delete removes the file at the relative path, reporting whether a
	// file was removed.
	Delete(relPath string) bool
}

// LocalStore is a FileStore over a local directory.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(data []byte, desiredName string) (string, error) {
	// flatten any path components out of the client-supplied name
	base := filepath.Base(strings.TrimSpace(desiredName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	name := fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), uuid.New().String()[:8], base)
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *LocalStore) Delete(relPath string) bool {
	base := filepath.Base(relPath)
	if base == "." || base == "" {
		return false
	}
	return os.Remove(filepath.Join(s.root, base)) == nil
}
