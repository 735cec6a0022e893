package scenario

import (
	"encoding/json"
	"fmt"
)

var scenarioFields = []string{"name", "npm", "command", "allowedToFail", "env"}

var configurationFields = []string{"scenarios", "npmOptions", "useVersionCompatibility", "command", "packageManager"}

// UnmarshalJSON decodes a scenario, keeping unknown fields in Extra.
func (s *Scenario) UnmarshalJSON(data []byte) error {
	type plain Scenario
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, scenarioFields)
	if err != nil {
		return err
	}
	*s = Scenario(p)
	s.Extra = extra
	return nil
}

// MarshalJSON encodes a scenario with its Extra fields inlined.
func (s Scenario) MarshalJSON() ([]byte, error) {
	type plain Scenario
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return joinExtra(data, s.Extra)
}

// UnmarshalJSON decodes a configuration, keeping unknown fields in Extra.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	type plain Configuration
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, configurationFields)
	if err != nil {
		return err
	}
	*c = Configuration(p)
	c.Extra = extra
	return nil
}

// MarshalJSON encodes a configuration with its Extra fields inlined.
func (c Configuration) MarshalJSON() ([]byte, error) {
	type plain Configuration
	if c.Scenarios == nil {
		c.Scenarios = []Scenario{}
	}
	data, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	return joinExtra(data, c.Extra)
}

// Decode parses a JSON document into a Configuration.
func Decode(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// FromValue converts a generic decoded document (as produced by YAML, TOML
// or CUE decoders) into a Configuration.
func FromValue(v any) (*Configuration, error) {
	if v == nil {
		return &Configuration{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("configuration is not representable as JSON: %w", err)
	}
	return Decode(data)
}

func splitExtra(data []byte, known []string) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		extra[k] = value
	}
	return extra, nil
}

func joinExtra(data []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return json.Marshal(m)
}
