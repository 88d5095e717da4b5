// Package policy provides optional declarative gating applied on top of a
// run – filtering retriever source domains and controlling which commands
// the exec tooling suite may execute.
package policy
