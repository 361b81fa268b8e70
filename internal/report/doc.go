// Package report renders compliance results and generation summaries.
//
// Text produces the human-readable report grouped by issue category.
// Structured converts a result into a Document that serializes to JSON or
// YAML for machine consumers.
package report
