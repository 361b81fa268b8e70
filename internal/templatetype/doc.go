// Package templatetype holds the static descriptor table for the supported
// pipeline template types (kustomize, helm, cli-tool). Both the generator and
// the compliance validator read from it; neither ever mutates it.
package templatetype
