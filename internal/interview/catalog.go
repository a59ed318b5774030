package interview

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the static list of practice questions.
type Catalog []Question

var defaultCatalog = sync.OnceValues(func() (Catalog, error) {
	return ParseCatalog(catalogYAML)
})

// DefaultCatalog returns the compiled-in catalog. It panics if the embedded
// file is malformed, which can only happen with a broken build.
func DefaultCatalog() Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic("interview: embedded catalog: " + err.Error())
	}
	return c
}

// ParseCatalog decodes and validates a YAML question list.
func ParseCatalog(data []byte) (Catalog, error) {
	var qs []Question
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(qs))
	for i, q := range qs {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: id is required", i)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Question == "" {
			return nil, fmt.Errorf("question %s: text is required", q.ID)
		}
		if !q.Difficulty.Valid() {
			return nil, fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
		}
		for _, f := range q.Fields {
			if !f.Valid() {
				return nil, fmt.Errorf("question %s: unknown field %q", q.ID, f)
			}
		}
		for _, e := range q.Experience {
			if !e.Valid() {
				return nil, fmt.Errorf("question %s: unknown experience %q", q.ID, e)
			}
		}
		for _, c := range q.CompanyTypes {
			if !c.Valid() {
				return nil, fmt.Errorf("question %s: unknown company type %q", q.ID, c)
			}
		}
	}
	return Catalog(qs), nil
}

func (c Catalog) Lookup(id string) (Question, bool) {
	for _, q := range c {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ByIDs returns the questions with the given ids in the order requested.
// Unknown and repeated ids are skipped.
func (c Catalog) ByIDs(ids []string) []Question {
	seen := make(map[string]struct{}, len(ids))
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if q, ok := c.Lookup(id); ok {
			seen[id] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}
