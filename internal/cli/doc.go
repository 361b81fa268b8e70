// Package cli defines the Cobra command tree for the pipegen CLI. Each file
// in this package registers one top-level command (generate, validate,
// types, config, version) with the root command. Commands only parse flags
// and format output; generation and validation live in internal packages.
package cli
