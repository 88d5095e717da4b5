// Package extension hosts the run-time registries that make the engine
// pluggable: named factories for provider clients and tooling suites, plus a
// registry of the Go types pluggable stores serialise. Applications register
// their own implementations here before constructing the service.
package extension
