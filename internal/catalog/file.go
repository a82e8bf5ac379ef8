package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a catalog extension:
//
//	cpus:
//	  - name: Ryzen 5 9600X
//	    tier: high
//	    gaming_score: 84
//	    release_year: 2024
//	    msrp: 279
//	    current_price: 229
//	gpus: []
type File struct {
	CPUs []Entry `yaml:"cpus"`
	GPUs []Entry `yaml:"gpus"`
}

// LoadFile reads a catalog extension file and returns the CPU and GPU
// catalogs formed by the built-in tables followed by the file's entries.
// Entries whose name matches a built-in replace it in place.
func LoadFile(path string) (cpus, gpus *Catalog, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return DefaultCPUs().With(f.CPUs...), DefaultGPUs().With(f.GPUs...), nil
}

func (f *File) validate() error {
	check := func(kind string, entries []Entry) error {
		for i, e := range entries {
			if Normalize(e.Name) == "" {
				return fmt.Errorf("%s[%d]: name is required", kind, i)
			}
			if TierRank(e.Tier) < 0 {
				return fmt.Errorf("%s[%d] %q: unknown tier %q", kind, i, e.Name, e.Tier)
			}
			if e.GamingScore < 0 || e.GamingScore > 100 {
				return fmt.Errorf("%s[%d] %q: gaming_score %d out of range 0-100", kind, i, e.Name, e.GamingScore)
			}
			if e.Price < 0 || e.MSRP < 0 {
				return fmt.Errorf("%s[%d] %q: negative price", kind, i, e.Name)
			}
		}
		return nil
	}
	if err := check("cpus", f.CPUs); err != nil {
		return err
	}
	return check("gpus", f.GPUs)
}
