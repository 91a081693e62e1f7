package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fluxbase-eu/gqlvalidate/internal/config"
	"github.com/fluxbase-eu/gqlvalidate/internal/logutil"
	"github.com/fluxbase-eu/gqlvalidate/internal/validation"
)

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema graphql.Schema
	config *config.GraphQLConfig
}

// GraphQLRequest represents a GraphQL HTTP request body
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response body
type GraphQLResponse struct {
	Data   interface{}    `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string                 `json:"message"`
	Locations  []GraphQLErrorLocation `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// GraphQLErrorLocation represents the location of a GraphQL error in the query
type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewGraphQLHandler creates a handler executing documents against schema
func NewGraphQLHandler(schema graphql.Schema, cfg *config.GraphQLConfig) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, config: cfg}
}

func errorResponse(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(GraphQLResponse{
		Errors: []GraphQLError{{Message: message}},
	})
}

// HandleGraphQL handles POST requests on the GraphQL endpoint
func (h *GraphQLHandler) HandleGraphQL(c fiber.Ctx) error {
	startTime := time.Now()

	var req GraphQLRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid JSON in request body")
	}

	if req.Query == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Query string is required")
	}
	if h.config.MaxQueryLength > 0 && len(req.Query) > h.config.MaxQueryLength {
		return errorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("query length %d exceeds maximum of %d bytes", len(req.Query), h.config.MaxQueryLength))
	}

	stats, err := analyzeQuery(req.Query)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query syntax")
	}
	if msg := checkLimits(stats, h.config); msg != "" {
		return errorResponse(c, fiber.StatusBadRequest, msg)
	}

	logger := requestLogger(c)
	ctx := logger.WithContext(c.Context())

	logger.Debug().
		Str("operation", req.OperationName).
		Str("query", logutil.SanitizeQuery(req.Query)).
		Interface("variables", logutil.RedactValue(req.Variables)).
		Msg("Executing GraphQL document")

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	validationErrors := 0
	for _, e := range result.Errors {
		if validation.IsValidationError(e) {
			validationErrors++
			continue
		}
		logger.Warn().
			Str("operation", req.OperationName).
			Interface("path", e.Path).
			Str("error", e.Message).
			Msg("GraphQL execution error")
	}

	logger.Debug().
		Str("operation", req.OperationName).
		Int("errors", len(result.Errors)).
		Int("validation_errors", validationErrors).
		Dur("duration", time.Since(startTime)).
		Msg("GraphQL query executed")

	return c.JSON(GraphQLResponse{
		Data:   result.Data,
		Errors: convertErrors(result.Errors),
	})
}

// HandleIntrospection handles GET requests on the GraphQL endpoint.
// Clients use it to discover the validated input types and the allErrors
// query.
func (h *GraphQLHandler) HandleIntrospection(c fiber.Ctx) error {
	if !h.config.Introspection {
		return errorResponse(c, fiber.StatusForbidden, "Introspection is disabled")
	}

	result := graphql.Do(graphql.Params{
		Schema:        h.schema,
		RequestString: introspectionQuery,
		Context:       c.Context(),
	})

	return c.JSON(GraphQLResponse{
		Data:   result.Data,
		Errors: convertErrors(result.Errors),
	})
}

func requestLogger(c fiber.Ctx) zerolog.Logger {
	ctx := log.With()
	if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
		ctx = ctx.Str("request_id", id)
	}
	return ctx.Logger()
}

// convertErrors converts graphql-go errors to our format, keeping
// extensions such as the validation entries
func convertErrors(errors []gqlerrors.FormattedError) []GraphQLError {
	if len(errors) == 0 {
		return nil
	}

	result := make([]GraphQLError, len(errors))
	for i, err := range errors {
		gqlErr := GraphQLError{
			Message:    err.Message,
			Path:       err.Path,
			Extensions: err.Extensions,
		}
		if len(err.Locations) > 0 {
			gqlErr.Locations = make([]GraphQLErrorLocation, len(err.Locations))
			for j, loc := range err.Locations {
				gqlErr.Locations[j] = GraphQLErrorLocation{
					Line:   loc.Line,
					Column: loc.Column,
				}
			}
		}
		result[i] = gqlErr
	}
	return result
}

// introspectionQuery returns the operation types and every type with its
// fields, arguments and input fields, enough for clients to discover the
// validated input objects and the allErrors query.
const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    types {
      kind
      name
      description
      fields {
        name
        args { ...InputValue }
        type { ...TypeRef }
      }
      inputFields { ...InputValue }
      enumValues { name }
    }
  }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType { kind name }
    }
  }
}
`
