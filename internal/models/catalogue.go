// catalogue.go
package models

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultCatalogue []byte

// Question types understood by the form views.
const (
	TypeChoice = "choice"
	TypeMulti  = "multi"
	TypeSelect = "select"
	TypeScale  = "scale"
	TypeText   = "text"
)

// Question struct to match the YAML structure
type Question struct {
	ID              Field    `yaml:"id"`
	Title           string   `yaml:"title"`
	Type            string   `yaml:"type"`
	Required        bool     `yaml:"required"`
	RequiredMessage string   `yaml:"required_message,omitempty"`
	Options         []Option `yaml:"options"`
	Placeholder     string   `yaml:"placeholder,omitempty"`
	Min             int      `yaml:"min,omitempty"`
	Max             int      `yaml:"max,omitempty"`
	MinLabel        string   `yaml:"min_label,omitempty"`
	MaxLabel        string   `yaml:"max_label,omitempty"`
}

// Option struct for question choices
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label,omitempty"`
}

// Text returns the label shown for the option, falling back to its value.
func (o Option) Text() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// Section groups questions under a heading.
type Section struct {
	ID        string     `yaml:"id"`
	Icon      string     `yaml:"icon"`
	Title     string     `yaml:"title"`
	Subtitle  string     `yaml:"subtitle"`
	Questions []Question `yaml:"questions"`
}

// Catalogue holds every section of the questionnaire.
type Catalogue struct {
	Sections []Section `yaml:"sections"`
}

// DefaultCatalogue parses the catalogue compiled into the binary.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads and parses a catalogue file. An empty path returns the
// embedded default.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return DefaultCatalogue()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue unmarshals catalogue YAML and checks that every question
// maps to a tracked field exactly once.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var catalogue Catalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue YAML: %w", err)
	}

	seen := make(map[Field]bool)
	for _, section := range catalogue.Sections {
		for _, q := range section.Questions {
			if !IsTracked(q.ID) {
				return nil, fmt.Errorf("catalogue question %q is not a tracked field", q.ID)
			}
			if seen[q.ID] {
				return nil, fmt.Errorf("catalogue question %q appears twice", q.ID)
			}
			seen[q.ID] = true
		}
	}
	return &catalogue, nil
}

// Question looks up a question by field.
func (c *Catalogue) Question(id Field) (Question, bool) {
	for _, section := range c.Sections {
		for _, q := range section.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// RequiredMessage returns the inline message for a missing required field.
func (c *Catalogue) RequiredMessage(id Field) string {
	if q, ok := c.Question(id); ok && q.RequiredMessage != "" {
		return q.RequiredMessage
	}
	return "Міндетті сұрақ"
}

// Options returns the option values for a field, or nil for free-form fields.
func (c *Catalogue) Options(id Field) []string {
	q, ok := c.Question(id)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		values = append(values, o.Value)
	}
	return values
}
