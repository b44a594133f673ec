// Package ports defines the interfaces the authorization core needs from the
// outside world: audit sinks, persistence, prompting and identity providers.
// Domain logic depends on these abstractions; infrastructure adapters implement them.
package ports
