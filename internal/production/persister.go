// Package production provides production integrations: persistence, output
// publishing, visualization and metrics.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/psl/internal/core"
)

// ErrInvalidSnapshot reports a loaded snapshot that cannot be restored.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// fileStore writes one file per runtime under dir.
type fileStore struct {
	dir       string
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func newFileStore(dir, ext string, marshal func(any) ([]byte, error), unmarshal func([]byte, any) error) (fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileStore{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return fileStore{dir: dir, ext: ext, marshal: marshal, unmarshal: unmarshal}, nil
}

func (s fileStore) path(runtimeID string) string {
	return filepath.Join(s.dir, runtimeID+s.ext)
}

func (s fileStore) Save(_ context.Context, snapshot core.RuntimeSnapshot) error {
	if snapshot.RuntimeID == "" {
		return fmt.Errorf("save: empty runtime id: %w", ErrInvalidSnapshot)
	}
	data, err := s.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", s.ext[1:], err)
	}

	fn := s.path(snapshot.RuntimeID)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (s fileStore) Load(_ context.Context, runtimeID string) (core.RuntimeSnapshot, error) {
	fn := s.path(runtimeID)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.RuntimeSnapshot{}, fmt.Errorf("runtime %q: %w", runtimeID, os.ErrNotExist)
		}
		return core.RuntimeSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot core.RuntimeSnapshot
	if err := s.unmarshal(data, &snapshot); err != nil {
		return core.RuntimeSnapshot{}, fmt.Errorf("%s unmarshal: %w", s.ext[1:], err)
	}
	snapshot.RuntimeID = runtimeID // Ensure ID
	if err := validateSnapshot(snapshot); err != nil {
		return core.RuntimeSnapshot{}, err
	}
	return snapshot, nil
}

// validateSnapshot checks node ids are present and unique.
func validateSnapshot(s core.RuntimeSnapshot) error {
	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: empty id: %w", i, ErrInvalidSnapshot)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %q: duplicate id: %w", n.ID, ErrInvalidSnapshot)
		}
		seen[n.ID] = true
	}
	return nil
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct {
	fileStore
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	s, err := newFileStore(dir, ".json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}, json.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &JSONPersister{s}, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	fileStore
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	s, err := newFileStore(dir, ".yaml", yaml.Marshal, yaml.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{s}, nil
}
