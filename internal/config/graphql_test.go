package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGraphQLConfig() GraphQLConfig {
	return GraphQLConfig{
		Enabled:         true,
		Path:            "/graphql",
		MaxQueryLength:  100000,
		MaxDepth:        10,
		MaxComplexity:   1000,
		Introspection:   true,
		MaxFieldsPerLvl: 50,
	}
}

func TestGraphQLConfig_Validate(t *testing.T) {
	t.Run("disabled config needs no validation", func(t *testing.T) {
		cfg := GraphQLConfig{Enabled: false}

		err := cfg.Validate()
		require.NoError(t, err)
	})

	t.Run("valid enabled config passes", func(t *testing.T) {
		cfg := validGraphQLConfig()

		err := cfg.Validate()
		require.NoError(t, err)
	})

	t.Run("minimum valid values pass", func(t *testing.T) {
		cfg := GraphQLConfig{
			Enabled:         true,
			Path:            "/",
			MaxDepth:        1,
			MaxComplexity:   1,
			MaxFieldsPerLvl: 1,
		}

		err := cfg.Validate()
		require.NoError(t, err)
	})

	tests := []struct {
		name     string
		mutate   func(*GraphQLConfig)
		expected string
	}{
		{
			name:     "rejects relative path",
			mutate:   func(c *GraphQLConfig) { c.Path = "graphql" },
			expected: "graphql path must start with '/'",
		},
		{
			name:     "rejects negative max_query_length",
			mutate:   func(c *GraphQLConfig) { c.MaxQueryLength = -1 },
			expected: "max_query_length cannot be negative",
		},
		{
			name:     "rejects zero max_depth",
			mutate:   func(c *GraphQLConfig) { c.MaxDepth = 0 },
			expected: "max_depth must be at least 1, got: 0",
		},
		{
			name:     "rejects negative max_depth",
			mutate:   func(c *GraphQLConfig) { c.MaxDepth = -42 },
			expected: "max_depth must be at least 1, got: -42",
		},
		{
			name:     "rejects zero max_complexity",
			mutate:   func(c *GraphQLConfig) { c.MaxComplexity = 0 },
			expected: "max_complexity must be at least 1",
		},
		{
			name:     "rejects negative max_complexity",
			mutate:   func(c *GraphQLConfig) { c.MaxComplexity = -500 },
			expected: "-500",
		},
		{
			name:     "rejects zero max_fields_per_lvl",
			mutate:   func(c *GraphQLConfig) { c.MaxFieldsPerLvl = 0 },
			expected: "max_fields_per_lvl must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validGraphQLConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}
