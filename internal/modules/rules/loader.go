package rules

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/prefill/internal/modules/prefill"
)

// LoadFile overlays the YAML document at path on base. Keys absent from the
// file keep their base value; unknown keys are an error.
//
//	urgency:
//	  baseline: 45
//	pov:
//	  rate_default: 12
func LoadFile(path string, base prefill.Rules) (prefill.Rules, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Decode(data, base)
}

// Decode overlays a YAML document on base and validates the result
func Decode(data []byte, base prefill.Rules) (prefill.Rules, error) {
	out := base
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return base, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return out, nil
}
