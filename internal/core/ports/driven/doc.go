// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// These interfaces are implemented by adapters in internal/adapters/driven
// and consumed by the core services. The core depends on these abstractions,
// never on concrete adapters.
package driven
