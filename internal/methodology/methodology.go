// Package methodology holds the catalog of training methodologies (EMOM,
// AMRAP, STANDARD, ...) used to build workout blocks.
package methodology

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Field describes one input of a methodology form.
type Field struct {
	Key         string   `yaml:"key" json:"key"`
	Label       string   `yaml:"label" json:"label"`
	Type        string   `yaml:"type" json:"type"` // number, text, select, movements_list
	Placeholder string   `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
	Default     any      `yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Help        string   `yaml:"help,omitempty" json:"help,omitempty"`
}

type Methodology struct {
	Code        string         `yaml:"code" json:"code"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Category    string         `yaml:"category" json:"category"` // metcon, strength, hiit, conditioning
	Icon        string         `yaml:"icon" json:"icon"`
	SortOrder   int            `yaml:"sort_order" json:"sortOrder"`
	Fields      []Field        `yaml:"fields" json:"fields"`
	Defaults    map[string]any `yaml:"defaults" json:"defaultValues"`
}

// Catalog is an immutable, code-indexed list of methodologies.
type Catalog struct {
	items  []Methodology
	byCode map[string]int
}

// Load parses a YAML catalog. Duplicate codes keep the lowest sort order.
func Load(data []byte) (*Catalog, error) {
	var raw []Methodology
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse methodology catalog: %w", err)
	}

	dedup := map[string]Methodology{}
	for _, m := range raw {
		m.Code = NormalizeCode(m.Code)
		if m.Code == "" {
			return nil, fmt.Errorf("methodology %q has no code", m.Name)
		}
		if existing, ok := dedup[m.Code]; ok && existing.SortOrder <= m.SortOrder {
			continue
		}
		dedup[m.Code] = m
	}

	c := &Catalog{byCode: map[string]int{}}
	for _, m := range dedup {
		c.items = append(c.items, m)
	}
	sort.Slice(c.items, func(i, j int) bool {
		if c.items[i].SortOrder == c.items[j].SortOrder {
			return c.items[i].Name < c.items[j].Name
		}
		return c.items[i].SortOrder < c.items[j].SortOrder
	})
	for i, m := range c.items {
		c.byCode[m.Code] = i
	}
	return c, nil
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Load(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return loadDefault()
}

func (c *Catalog) List() []Methodology {
	out := make([]Methodology, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(code string) (Methodology, bool) {
	i, ok := c.byCode[NormalizeCode(code)]
	if !ok {
		return Methodology{}, false
	}
	return c.items[i], true
}

// Defaults returns a fresh copy of the default block config for code, or an
// empty map for unknown codes.
func (c *Catalog) Defaults(code string) map[string]any {
	m, ok := c.Get(code)
	if !ok || m.Defaults == nil {
		return map[string]any{}
	}
	return copyValue(m.Defaults).(map[string]any)
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

var legacyCodes = map[string]string{
	"FOR TIME":     "FOR_TIME",
	"NOT FOR TIME": "NOT_FOR_TIME",
}

var separators = regexp.MustCompile(`[\s-]+`)

// NormalizeCode maps display formats ("For Time", "not-for-time") to catalog codes.
func NormalizeCode(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return ""
	}
	if c, ok := legacyCodes[upper]; ok {
		return c
	}
	return separators.ReplaceAllString(upper, "_")
}
