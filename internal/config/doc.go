// Package config handles loading and validation of pm configuration.
//
// Global configuration is read from ~/.config/pm/config.toml with environment
// variable overrides. Directory-local configuration (.pm.toml, .pm.yaml or
// .pm.yml at a project root) is exposed as a raw key/value map; its values
// are validated by the packages consuming them.
//
// # Configuration Sources (highest priority first)
//
//   - PM_CONFIG env var: alternate global config file
//   - PM_REGISTRY_PATH env var: known-projects registry file
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - prefer_other_window: default output placement for dispatched commands
//   - registry_path, trusted_path, log_dir: state file locations (absolute or ~/...)
//   - shell: shell used to run compile commands (default: /bin/sh)
//   - trust_all: skip the trust prompt for directory-local configuration
//   - remember_depth: default depth for "pm projects remember-under"
//
// # Directory Tooling
//
// The [env] section controls the direnv and mise loaders:
//
//	[env]
//	direnv = "auto"   # auto, always, or never
//	mise = "never"
//
// "auto" loads a tool only when it was already active in the invoking shell.
//
// # Default Commands
//
// [[commands]] entries form the default custom command set, used when a
// project has no local commands or its local commands fail validation:
//
//	[[commands]]
//	key = "m"
//	description = "make"
//	type = "compile"
//	command = "make -k"
package config
