// Package config loads websearch configuration.
//
// Load applies, in order: Defaults, the YAML file, WEBSEARCH_* environment
// overrides, secret resolution (secretref:<provider>:<ref> and strict
// ${VAR} expansion) and Validate.
package config
