// Package cache is the client read cache: query results keyed by query
// identity, extended in place by pushed book-added events.
package cache

import (
	"encoding/json"
)

// QueryIdentity names a cached result: an operation plus its variables in
// canonical JSON form.
type QueryIdentity struct {
	Operation string
	Variables string
}

// Identity builds a QueryIdentity. encoding/json sorts map keys, so equal
// variable sets yield equal identities.
func Identity(operation string, variables map[string]interface{}) QueryIdentity {
	if len(variables) == 0 {
		return QueryIdentity{Operation: operation}
	}
	raw, err := json.Marshal(variables)
	if err != nil {
		// unreachable for JSON-able variables; fall back to the bare operation
		return QueryIdentity{Operation: operation}
	}
	return QueryIdentity{Operation: operation, Variables: string(raw)}
}

func (q QueryIdentity) String() string {
	if q.Variables == "" {
		return q.Operation
	}
	return q.Operation + q.Variables
}
