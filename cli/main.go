// gqlvalidate serves and checks GraphQL mutations whose inputs are validated
// before their resolvers run.
//
// Usage:
//
//	# Serve the sample schema
//	gqlvalidate serve --config config.yaml
//
//	# Validate variables against the sample mutation
//	gqlvalidate check --variables input.json
//
//	# List error codes
//	gqlvalidate codes -o json
package main

import "github.com/fluxbase-eu/gqlvalidate/cli/cmd"

func main() {
	cmd.Execute()
}
