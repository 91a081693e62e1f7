package validation

import (
	"context"

	"github.com/graphql-go/graphql"
)

type contextKey int

const (
	resolveInfoKey contextKey = iota
	argsKey
)

func withResolve(ctx context.Context, info graphql.ResolveInfo, args map[string]any) context.Context {
	ctx = context.WithValue(ctx, resolveInfoKey, info)
	return context.WithValue(ctx, argsKey, args)
}

// ResolveInfoFrom returns the resolve info of the mutation being validated.
func ResolveInfoFrom(ctx context.Context) (graphql.ResolveInfo, bool) {
	info, ok := ctx.Value(resolveInfoKey).(graphql.ResolveInfo)
	return info, ok
}

// ArgsFrom returns the raw, untransformed mutation arguments. Validators must
// treat the map as read-only.
func ArgsFrom(ctx context.Context) map[string]any {
	args, _ := ctx.Value(argsKey).(map[string]any)
	return args
}
