// Package compliance audits a project tree against the structural and content
// rules of a template type.
//
// Validation never stops at the first problem: every check runs and every
// violation is collected as an Issue tagged with a Category. Callers may
// narrow the rules for one run with a RelaxationSet; the canonical descriptor
// table in package templatetype is never modified.
package compliance
