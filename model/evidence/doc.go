// Package evidence defines the claim graph and source records that back
// proposals with external citations. Bundles are produced by the retriever
// and consumed read-only by the solver and the judge.
package evidence
