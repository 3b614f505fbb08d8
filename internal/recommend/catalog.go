package recommend

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed resources.json
var catalogFiles embed.FS

// Resource is one learning resource in the catalog. The URL doubles as the
// stable identifier for deduplication.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Skill string `json:"skill,omitempty"`
}

// catalogData is the on-disk shape of resources.json. Skill keys are
// lowercase canonical names.
type catalogData struct {
	Skills  map[string][]Resource `json:"skills"`
	General []Resource            `json:"general"`
}

// Catalog is the embedded resource library. Read-only after load.
type Catalog struct {
	data catalogData
}

var (
	loadOnce    sync.Once
	loadedCat   *Catalog
	loadFailure error
)

// LoadCatalog parses the embedded resource catalog. Loading is cached.
func LoadCatalog() (*Catalog, error) {
	loadOnce.Do(func() {
		raw, err := catalogFiles.ReadFile("resources.json")
		if err != nil {
			loadFailure = fmt.Errorf("failed to read resource catalog: %w", err)
			return
		}
		var data catalogData
		if err := json.Unmarshal(raw, &data); err != nil {
			loadFailure = fmt.Errorf("failed to parse resource catalog: %w", err)
			return
		}
		loadedCat = &Catalog{data: data}
	})
	return loadedCat, loadFailure
}

// ForSkill returns catalog resources for a canonical skill name, with the
// skill field filled in. Unknown skills return nil.
func (c *Catalog) ForSkill(canonicalName string) []Resource {
	entries := c.data.Skills[strings.ToLower(canonicalName)]
	out := make([]Resource, 0, len(entries))
	for _, r := range entries {
		r.Skill = canonicalName
		out = append(out, r)
	}
	return out
}

// General returns skill-agnostic interview preparation resources.
func (c *Catalog) General() []Resource {
	return append([]Resource(nil), c.data.General...)
}
