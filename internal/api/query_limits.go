package api

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/fluxbase-eu/gqlvalidate/internal/config"
)

// queryStats summarises the selection sets of every operation in a document.
type queryStats struct {
	Depth             int
	Complexity        int
	MaxFieldsPerLevel int
	HasFragmentSpread bool
}

// analyzeQuery parses query and measures it.
func analyzeQuery(query string) (queryStats, error) {
	if query == "" {
		return queryStats{}, fmt.Errorf("query cannot be empty")
	}

	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return queryStats{}, err
	}

	var stats queryStats
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if depth := selectionDepth(op.SelectionSet, 0); depth > stats.Depth {
			stats.Depth = depth
		}
		if n := fieldsPerLevel(op.SelectionSet); n > stats.MaxFieldsPerLevel {
			stats.MaxFieldsPerLevel = n
		}
		if hasFragmentSpread(op.SelectionSet) {
			stats.HasFragmentSpread = true
		}

		baseCost := 0
		if op.Operation == ast.OperationTypeMutation {
			baseCost = 10
		}
		stats.Complexity += baseCost + selectionComplexity(op.SelectionSet, 1)
	}
	return stats, nil
}

// checkLimits returns the message of the first limit the document exceeds, or
// "" when it is within every configured limit.
func checkLimits(stats queryStats, cfg *config.GraphQLConfig) string {
	switch {
	case cfg.MaxDepth > 0 && stats.Depth > cfg.MaxDepth:
		return fmt.Sprintf("query depth %d exceeds maximum allowed depth of %d", stats.Depth, cfg.MaxDepth)
	case !cfg.AllowFragments && stats.HasFragmentSpread:
		return "Fragment spreads are not allowed"
	case cfg.MaxFieldsPerLvl > 0 && stats.MaxFieldsPerLevel > cfg.MaxFieldsPerLvl:
		return fmt.Sprintf("query has %d unique fields at a level, maximum allowed is %d", stats.MaxFieldsPerLevel, cfg.MaxFieldsPerLvl)
	case cfg.MaxComplexity > 0 && stats.Complexity > cfg.MaxComplexity:
		return fmt.Sprintf("query complexity %d exceeds maximum of %d", stats.Complexity, cfg.MaxComplexity)
	default:
		return ""
	}
}

func selectionDepth(selSet *ast.SelectionSet, currentDepth int) int {
	if selSet == nil || len(selSet.Selections) == 0 {
		return currentDepth
	}

	maxDepth := currentDepth + 1
	for _, sel := range selSet.Selections {
		var depth int
		switch s := sel.(type) {
		case *ast.Field:
			depth = selectionDepth(s.SelectionSet, currentDepth+1)
		case *ast.InlineFragment:
			depth = selectionDepth(s.SelectionSet, currentDepth+1)
		case *ast.FragmentSpread:
			// Named fragments are not resolved here; count one level.
			depth = currentDepth + 1
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// selectionComplexity scores fields at 1 each, and plural-named fields (the
// usual list convention) at 10 with a tenfold multiplier on their children.
func selectionComplexity(selSet *ast.SelectionSet, multiplier int) int {
	if selSet == nil {
		return 0
	}

	var complexity int
	for _, sel := range selSet.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			name := s.Name.Value
			isList := len(name) > 1 && name[len(name)-1] == 's' && name != "status" && name != "address"

			cost := 1
			if isList {
				cost = 10
			}
			complexity += cost * multiplier

			if s.SelectionSet != nil {
				nested := multiplier
				if isList {
					nested *= 10
				}
				complexity += selectionComplexity(s.SelectionSet, nested)
			}
		case *ast.InlineFragment:
			complexity += selectionComplexity(s.SelectionSet, multiplier)
		}
	}
	return complexity
}

func hasFragmentSpread(selSet *ast.SelectionSet) bool {
	if selSet == nil {
		return false
	}
	for _, sel := range selSet.Selections {
		switch s := sel.(type) {
		case *ast.FragmentSpread:
			return true
		case *ast.Field:
			if hasFragmentSpread(s.SelectionSet) {
				return true
			}
		case *ast.InlineFragment:
			if hasFragmentSpread(s.SelectionSet) {
				return true
			}
		}
	}
	return false
}

// fieldsPerLevel returns the largest number of distinct field names, aliases
// ignored, found in any single selection set.
func fieldsPerLevel(selSet *ast.SelectionSet) int {
	if selSet == nil {
		return 0
	}

	names := make(map[string]bool)
	maxNested := 0
	for _, sel := range selSet.Selections {
		var nested int
		switch s := sel.(type) {
		case *ast.Field:
			names[s.Name.Value] = true
			nested = fieldsPerLevel(s.SelectionSet)
		case *ast.InlineFragment:
			nested = fieldsPerLevel(s.SelectionSet)
		}
		if nested > maxNested {
			maxNested = nested
		}
	}

	if len(names) > maxNested {
		return len(names)
	}
	return maxNested
}
