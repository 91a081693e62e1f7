package validation

import (
	"github.com/graphql-go/graphql"
)

var errorCodeType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "ValidationErrorCode",
	Description: "A validation error code that mutations may report",
	Fields: graphql.Fields{
		"code": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// ErrorsQueryField returns a query field listing every registered error code,
// so clients can discover the codes they need to handle. Codes must be
// registered explicitly with RegisterCode.
func (r *Registry) ErrorsQueryField() *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewList(errorCodeType),
		Description: "All validation error codes known to the server",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			codes := r.Codes()
			out := make([]map[string]interface{}, len(codes))
			for i, c := range codes {
				out[i] = map[string]interface{}{"code": c}
			}
			return out, nil
		},
	}
}
