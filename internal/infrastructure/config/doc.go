// Package config loads and validates Argent Core configuration.
//
// Configuration is read from a YAML file and merged over built-in
// defaults; selected values can then be overridden by ARGENT_* environment
// variables (secrets in particular should come from the environment).
//
// Loading order:
//
//  1. Hardcoded defaults
//  2. YAML file values
//  3. Environment variable overrides (ARGENT_SECTION_KEY)
//
// Example:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	logger := logging.New(cfg.Logging, version)
package config
