// Package config resolves the settings of a generation run.
//
// Values are layered, later layers winning: built-in defaults, the user
// config file at $XDG_CONFIG_HOME/pipegen/config.yaml, an optional project
// config file (YAML, JSON or TOML, checked against the config schema),
// PIPEGEN_* environment variables, and finally explicit overrides from the
// command line.
package config
