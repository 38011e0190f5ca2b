package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Properties is the persistence backend for configuration key/value pairs.
// The contract mirrors a script-properties store: GetAll returns every
// persisted pair, ReplaceAll atomically swaps the whole set.
type Properties interface {
	GetAll() (map[string]string, error)
	ReplaceAll(values map[string]string) error
}

// FileProperties persists properties as a JSON object on disk.
type FileProperties struct {
	Path string
}

// NewFileProperties returns a file-backed Properties store at path.
func NewFileProperties(path string) *FileProperties {
	return &FileProperties{Path: path}
}

func (p *FileProperties) GetAll() (map[string]string, error) {
	data, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading properties file %s: %w", p.Path, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing properties file %s: %w", p.Path, err)
	}
	return values, nil
}

func (p *FileProperties) ReplaceAll(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding properties: %w", err)
	}

	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := p.Path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("creating properties directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing properties file: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		return fmt.Errorf("replacing properties file: %w", err)
	}
	return nil
}
