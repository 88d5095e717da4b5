// Package progress keeps aggregated run counters – subtasks by state,
// proposals sampled and evidence fetches issued – with an optional onChange
// callback for live reporting.
package progress
