package outline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the tunable switches of the engine. The zero value is not
// useful; start from DefaultPolicy.
type Policy struct {
	// ClassifyDocuments enables the document-type classifier. When false
	// every document uses the standard title strategy.
	ClassifyDocuments bool `yaml:"classify_documents"`

	// MinHeadingScore is the score a fragment needs to count as a heading.
	MinHeadingScore int `yaml:"min_heading_score"`

	// ClampFirstHeading caps the first heading of each page at H2.
	ClampFirstHeading bool `yaml:"clamp_first_heading"`
}

func DefaultPolicy() Policy {
	return Policy{
		ClassifyDocuments: true,
		MinHeadingScore:   4,
	}
}

// LoadPolicy overlays a YAML file on DefaultPolicy. Keys missing from the
// file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.MinHeadingScore <= 0 {
		return fmt.Errorf("min_heading_score must be positive, got %d", p.MinHeadingScore)
	}
	return nil
}
