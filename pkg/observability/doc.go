/*
Package observability turns calculator lifecycle events into Prometheus metrics
and structured log lines.

Both are exposed as domain.LifecycleHooks so they can be combined and passed to
abacus.WithLifecycleHooks.
*/
package observability
