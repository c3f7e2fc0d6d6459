// Package moduleconfig defines the module configuration values edited by meshcfg.
//
// A Meshtastic node exposes one configuration block per module. This package
// models those blocks as plain Go values together with their partial
// counterparts (patches) that hold only the fields a user changed but the node
// has not yet confirmed.
//
// # Value Tiers
//
// Three tiers of the same module value exist at runtime:
//   - Remote: the last value confirmed by the node (RemoteHardwareConfig)
//   - Overlay: pending, unconfirmed edits (RemoteHardwarePatch, nil fields are absent)
//   - Form: whatever the page currently displays
//
// The resolved value a form starts from is computed per field as
// "overlay field if present, otherwise remote field":
//
//	remote := &moduleconfig.RemoteHardwareConfig{Enabled: false}
//	enabled := true
//	overlay := &moduleconfig.RemoteHardwarePatch{Enabled: &enabled}
//
//	resolved := moduleconfig.ResolveRemoteHardware(remote, overlay)
//	// resolved.Enabled == true
//
// # Patches
//
// Every patch type implements Patch. Patches are treated as immutable values:
// Merge returns a new patch and never modifies either operand, which lets
// callers compare patch references to detect change.
//
// # Validation
//
// Field level validation uses go-playground/validator struct tags. Validation
// failures are reported per field (FieldErrors) so a form can show them next
// to the offending input.
package moduleconfig
