package models

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultCriterionWeight applies to any criterion a snapshot does not weight explicitly.
const DefaultCriterionWeight = 1.0

// CriteriaSnapshot is the criteria configuration that was active when an
// evaluation ran.
type CriteriaSnapshot struct {
	Core    []string           `json:"core" mapstructure:"core"`
	Domain  []string           `json:"domain" mapstructure:"domain"`
	Weights map[string]float64 `json:"weights,omitempty" mapstructure:"weights"`
}

// DecodeCriteriaSnapshot converts the loosely typed snapshot column into a
// CriteriaSnapshot. Numeric weights stored as strings or integers are accepted.
// A nil input yields a nil snapshot.
func DecodeCriteriaSnapshot(raw map[string]any) (*CriteriaSnapshot, error) {
	if raw == nil {
		return nil, nil
	}

	var snap CriteriaSnapshot
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &snap,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding criteria snapshot: %w", err)
	}
	return &snap, nil
}

// Names returns the core and domain criterion names, deduplicated, in the
// order they first appear.
func (s *CriteriaSnapshot) Names() []string {
	seen := make(map[string]bool, len(s.Core)+len(s.Domain))
	names := make([]string, 0, len(s.Core)+len(s.Domain))
	for _, group := range [][]string{s.Core, s.Domain} {
		for _, n := range group {
			if seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// Weight returns the configured weight for name, or DefaultCriterionWeight.
func (s *CriteriaSnapshot) Weight(name string) float64 {
	if w, ok := s.Weights[name]; ok {
		return w
	}
	return DefaultCriterionWeight
}
