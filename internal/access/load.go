package access

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// LoadPolicy reads a YAML policy file on top of DefaultPolicy. Keys missing
// from the file keep their default value. An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// YAML renders the policy in the format LoadPolicy accepts.
func (p Policy) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
