// Package validation runs structured input validation in front of
// graphql-go mutation resolvers.
//
// Validators are registered per input type on a Registry, either while the
// type is defined (Registry.InputObject) or afterwards (Registry.Register).
// A decorated mutation walks every input-object argument in field order,
// recursing into nested objects and lists, runs the field validators, and,
// when every field passed, the whole-object validators from the innermost
// object outwards. Failures are collected with their paths and reported as
// a single error:
//
//	{
//	  "message": "ValidationError",
//	  "extensions": {
//	    "validationErrors": [
//	      {"code": "InvalidEmailFormat", "path": ["email"]},
//	      {"code": "LengthNotInRange", "path": ["people", 0, "theName"], "meta": {"min": 1, "max": 300}}
//	    ]
//	  }
//	}
//
// When validation succeeds the resolver receives the transformed arguments.
package validation
