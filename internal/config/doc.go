// Package config provides user configuration management for meshcfg.
//
// This package manages a YAML-based configuration file that stores known
// Meshtastic nodes, the module edits that had not been confirmed when the
// editor last exited, and application preferences. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - $MESHCFG_CONFIG_DIR/config.yaml when the variable is set
//   - Linux: $XDG_CONFIG_HOME/meshcfg/config.yaml or $HOME/.config/meshcfg/config.yaml
//   - macOS: $HOME/.config/meshcfg/config.yaml
//   - Windows: %LOCALAPPDATA%\meshcfg\config.yaml
//
// # Usage Example
//
//	registry, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetNodeNickname("!a1b2c3d4", "Roof relay")
//	registry.SetPending("!a1b2c3d4", store.Pending())
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Normalization
//
// Load and Save repair hand-edited files: node keys are trimmed, pending
// entries without edits are dropped and preferences out of range fall back
// to their defaults (the debounce window is capped at MaxDebounce).
//
// A Registry is not safe for concurrent use; the CLI owns a single instance.
package config
