// Package retriever curates external evidence for research subtasks. It
// classifies whether a query needs live search via an ordered rule cascade,
// fetches factual information with source attributions from the backend,
// parses source records by a three-strategy cascade and prioritises them
// into a compact, diversified evidence bundle. Retrieval never fails a run –
// every error path degrades to a knowledge-based bundle.
package retriever
