// Package platform provides permission helpers that behave consistently
// across operating systems. Windows has no Unix permission bits, so mode
// changes there are no-ops.
package platform
