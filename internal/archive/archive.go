// Package archive persists downloaded lab definitions to local disk,
// one YAML file per lab, keyed by lab ID.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store writes lab definitions under a single archive directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on
// first save, not here.
func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, log: logger}
}

// Save writes a lab definition to <dir>/<labID>.yaml, replacing any
// previous content for the same lab.
func (s *Store) Save(labID, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", s.dir, err)
	}
	path := s.Path(labID)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write lab %s: %w", labID, err)
	}
	s.log.Info().Str("lab", labID).Str("path", path).Msg("archived lab definition")
	return nil
}

// Path returns the archive path for a lab ID.
func (s *Store) Path(labID string) string {
	return filepath.Join(s.dir, labID+".yaml")
}

// Title extracts the lab title from a downloaded definition. Both the
// nested form (lab: {title: ...}) and the legacy top-level title are
// recognized; anything unparsable yields "".
func Title(content string) string {
	var def struct {
		Lab struct {
			Title string `yaml:"title"`
		} `yaml:"lab"`
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal([]byte(content), &def); err != nil {
		return ""
	}
	if def.Lab.Title != "" {
		return def.Lab.Title
	}
	return def.Title
}
