package config

import (
	"fmt"
	"strings"
)

// GraphQLConfig contains the endpoint settings and the limits applied to
// incoming documents before they are executed
type GraphQLConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Path            string `mapstructure:"path"`               // Endpoint path (default: /graphql)
	MaxQueryLength  int    `mapstructure:"max_query_length"`   // Maximum document size in bytes, 0 for none
	MaxDepth        int    `mapstructure:"max_depth"`          // Maximum selection depth (default: 10)
	MaxComplexity   int    `mapstructure:"max_complexity"`     // Maximum complexity score (default: 1000)
	MaxFieldsPerLvl int    `mapstructure:"max_fields_per_lvl"` // Maximum unique fields per selection set (default: 50)
	Introspection   bool   `mapstructure:"introspection"`      // Serve GET introspection; clients use it to discover input types
	AllowFragments  bool   `mapstructure:"allow_fragments"`    // Allow named fragment spreads (default: false)
}

// Validate validates GraphQL configuration
func (gc *GraphQLConfig) Validate() error {
	if !gc.Enabled {
		return nil
	}

	if !strings.HasPrefix(gc.Path, "/") {
		return fmt.Errorf("graphql path must start with '/', got: %q", gc.Path)
	}

	if gc.MaxQueryLength < 0 {
		return fmt.Errorf("graphql max_query_length cannot be negative, got: %d", gc.MaxQueryLength)
	}

	if gc.MaxDepth < 1 {
		return fmt.Errorf("graphql max_depth must be at least 1, got: %d", gc.MaxDepth)
	}

	if gc.MaxComplexity < 1 {
		return fmt.Errorf("graphql max_complexity must be at least 1, got: %d", gc.MaxComplexity)
	}

	if gc.MaxFieldsPerLvl < 1 {
		return fmt.Errorf("graphql max_fields_per_lvl must be at least 1, got: %d", gc.MaxFieldsPerLvl)
	}

	return nil
}
