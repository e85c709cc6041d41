package catalog

import (
	"fmt"
	"os"

	"github.com/okian/skillcat/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// file is the on-disk taxonomy layout:
//
//	categories:
//	  - name: Big Data
//	    description: ...
//	    related_skills: [Hadoop, Spark]
type file struct {
	Categories []model.Category `yaml:"categories"`
}

// Load reads a YAML taxonomy from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML taxonomy document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}
	return New(f.Categories...)
}
