// Package source locates the template trees a project is generated from.
//
// A template type resolves to a primary tree (the type-specific template
// root) and, when present, a fallback tree (the shared reference root) that
// only fills in files the primary does not provide. A tree may describe
// itself with a template.yaml manifest, including a semver constraint on the
// generator versions able to render it.
package source
