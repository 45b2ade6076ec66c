package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest file names searched for in an extension directory, in order.
var ManifestNames = []string{"extension.json", "extension.yaml", "extension.yml"}

// Manifest is the on-disk description of an extension.
type Manifest struct {
	Identity `yaml:",inline"`

	// Description is a short human readable summary.
	Description string `json:"description" yaml:"description"`

	// Main is the script entry point relative to the manifest directory.
	Main string `json:"main" yaml:"main"`

	dir string
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return m.dir
}

// MainPath returns the absolute path of the entry point.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.dir, m.Main)
}

// LoadManifest reads an extension manifest. The format is chosen by file
// extension: .json, .yaml or .yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedManifest, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m.dir = filepath.Dir(path)
	m.FilePath = path
	m.Name = strings.TrimSpace(m.Name)
	if m.Main == "" {
		m.Main = "main.lua"
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindManifest returns the first manifest file present in dir.
func FindManifest(dir string) (string, bool) {
	for _, name := range ManifestNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}
