// Package run holds the per-run session state – the done set, the artifact
// table and the evidence ledger – and the durable Output record assembled
// when a run finishes.
package run
