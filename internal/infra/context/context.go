// Package context carries request-scoped values (currently the trace ID)
// through the handler chain.
package context

type contextKey string
