package variant

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultFiles embed.FS

// Rules are the default clock settings for one game variant, in seconds.
// Both seats start from the same defaults; explicit create requests may
// override them per seat.
type Rules struct {
	Time      int `yaml:"time"`
	Increment int `yaml:"increment"`
}

type file struct {
	Variants map[string]Rules `yaml:"variants"`
}

// Catalog maps variant names to their default rules. Defaults are embedded;
// an optional override directory can add or replace entries.
type Catalog struct {
	mu       sync.RWMutex
	variants map[string]Rules
}

// New loads the embedded defaults and then applies overrides from dir if set.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{variants: make(map[string]Rules)}
	raw, err := fs.ReadFile(defaultFiles, "defaults.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded variants: %w", err)
	}
	if err := c.applyYAML(raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read variants dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := c.applyYAML(b); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) applyYAML(b []byte) error {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, r := range f.Variants {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if r.Time <= 0 {
			return fmt.Errorf("variant %q: non-positive time", name)
		}
		if r.Increment < 0 {
			return fmt.Errorf("variant %q: negative increment", name)
		}
		c.variants[name] = r
	}
	return nil
}

// Lookup returns the rules for a variant name.
func (c *Catalog) Lookup(name string) (Rules, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.variants[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Names returns the known variant names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.variants))
	for name := range c.variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
