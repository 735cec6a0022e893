package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Configuration
		wantErr string
	}{
		{
			name: "valid",
			cfg:  &Configuration{Scenarios: []Scenario{{Name: "a"}, {Name: "b"}}},
		},
		{
			name:    "missing name",
			cfg:     &Configuration{Scenarios: []Scenario{{Name: "a"}, {Command: "npm test"}}},
			wantErr: "scenarios[1]: name is required",
		},
		{
			name:    "duplicate name",
			cfg:     &Configuration{Scenarios: []Scenario{{Name: "a"}, {Name: "a"}}},
			wantErr: `duplicate name "a"`,
		},
		{
			name: "names differing by case are distinct",
			cfg:  &Configuration{Scenarios: []Scenario{{Name: "a"}, {Name: "A"}}},
		},
		{
			name:    "unknown package manager",
			cfg:     &Configuration{PackageManager: "bun"},
			wantErr: `unknown packageManager "bun"`,
		},
		{
			name:    "nil",
			cfg:     nil,
			wantErr: "configuration is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
