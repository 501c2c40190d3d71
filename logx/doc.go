// Package logx implements leveled log routing for the pool. A Router
// fans slog records out to a configurable set of sinks and supports
// atomic runtime reconfiguration of the active level and sink set.
package logx
