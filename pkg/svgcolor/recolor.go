// Package svgcolor recolors SVG logo documents against named palettes.
package svgcolor

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed palettes.yaml
var palettesYAML []byte

type paletteFile struct {
	Palettes []Palette `yaml:"palettes"`
}

// Palette is a named ordered set of hex colors.
type Palette struct {
	Name   string   `yaml:"name"`
	Colors []string `yaml:"colors"`
}

// Processor recolors SVG documents. Construct with NewProcessor.
type Processor struct {
	palettes map[string]Palette
}

// NewProcessor loads the embedded palette definitions.
func NewProcessor() (*Processor, error) {
	var parsed paletteFile
	if err := yaml.Unmarshal(palettesYAML, &parsed); err != nil {
		return nil, fmt.Errorf("parse palettes: %w", err)
	}
	if len(parsed.Palettes) == 0 {
		return nil, fmt.Errorf("no palettes defined")
	}

	palettes := make(map[string]Palette, len(parsed.Palettes))
	for _, p := range parsed.Palettes {
		if p.Name == "" || len(p.Colors) == 0 {
			return nil, fmt.Errorf("palette %q is incomplete", p.Name)
		}
		palettes[p.Name] = p
	}
	return &Processor{palettes: palettes}, nil
}

// Schemes returns the known palette names in sorted order.
func (p *Processor) Schemes() []string {
	names := make([]string, 0, len(p.palettes))
	for name := range p.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a palette with the given name exists.
func (p *Processor) Has(scheme string) bool {
	_, ok := p.palettes[scheme]
	return ok
}

var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// Recolor replaces every distinct hex color in the SVG with a palette color.
// Colors are assigned in order of first appearance so repeated fills stay
// consistent across the document. Returns an error for unknown schemes or
// input that does not look like an SVG.
func (p *Processor) Recolor(svg []byte, scheme string) ([]byte, error) {
	palette, ok := p.palettes[scheme]
	if !ok {
		return nil, fmt.Errorf("unknown color scheme %q", scheme)
	}
	doc := string(svg)
	if !strings.Contains(doc, "<svg") {
		return nil, fmt.Errorf("input is not an SVG document")
	}

	assigned := make(map[string]string)
	next := 0
	out := hexColorPattern.ReplaceAllStringFunc(doc, func(match string) string {
		key := strings.ToLower(match)
		if replacement, seen := assigned[key]; seen {
			return replacement
		}
		replacement := palette.Colors[next%len(palette.Colors)]
		assigned[key] = replacement
		next++
		return replacement
	})

	return []byte(out), nil
}
