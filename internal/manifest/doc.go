// Package manifest decodes the structured documents pipegen reads: Concourse
// pipeline and task definitions, relaxation-rule files and project config
// files. YAML, JSON and TOML are supported, and relaxation and config
// documents are checked against JSON schemas embedded in the binary.
package manifest
