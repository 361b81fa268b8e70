// Package materialize writes a new pipeline project from template trees.
//
// A Copier merges one source tree into a destination, rendering text files
// through a render.Context and copying binary files byte for byte. A
// Generator runs the whole flow: it resolves the primary and fallback trees
// for a template type, lays out the base directories, copies the primary
// tree with overwrite semantics, fills gaps from the fallback tree without
// touching anything already written, and finally makes sure every script
// that must be executable is.
package materialize
