// Package assets provides the embedded generation directives.
//
// Directives live in directives/directives.yaml and are embedded at compile
// time. Each operation has a text/template body and, for multi-variant
// operations, a list of pose/background variants substituted into it.
package assets

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed directives/directives.yaml
var directivesYAML []byte

// Operation names as they appear in the directives document.
const (
	OpPortrait    = "portrait"
	OpCelebration = "celebration"
	OpOutfit      = "outfit"
	OpFood        = "food"
	OpCharacter   = "character"
	OpPhotoshoot  = "photoshoot"
)

// Cast names the people who appear in directives.
type Cast struct {
	Honoree string `yaml:"honoree" json:"honoree"`
	Partner string `yaml:"partner" json:"partner"`
	Friend  string `yaml:"friend" json:"friend"`
}

// Variant is one pose of a multi-variant operation.
type Variant struct {
	Pose       string `yaml:"pose"`
	Background string `yaml:"background"`
}

// Directive is one operation's template and variants.
type Directive struct {
	Aspect   string    `yaml:"aspect"`
	Template string    `yaml:"template"`
	Variants []Variant `yaml:"variants"`
}

type document struct {
	Cast       Cast                  `yaml:"cast"`
	Operations map[string]*Directive `yaml:"operations"`
}

var defaultDirectives = mustParse(directivesYAML)

// Default returns the directives compiled into the binary.
func Default() *Directives {
	return defaultDirectives
}

// Parse decodes a directives document and pre-parses every template.
func Parse(data []byte) (*Directives, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode directives: %w", err)
	}
	if len(doc.Operations) == 0 {
		return nil, fmt.Errorf("directives document has no operations")
	}
	return compile(doc)
}

// mustParse panics on a malformed embedded document, so a bad edit fails at
// startup instead of on the first generation.
func mustParse(data []byte) *Directives {
	d, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return d
}
