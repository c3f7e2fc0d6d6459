package editor

import "github.com/muurk/meshcfg/internal/moduleconfig"

// Binding ties a page to one module's value type.
type Binding[C any] struct {
	Module moduleconfig.Name

	// Resolve merges the module's overlay slice over the remote value.
	Resolve ResolveFunc[C]

	// Snapshot expresses a complete form value as a patch for the overlay.
	Snapshot func(C) moduleconfig.Patch

	// Clone deep-copies a value. Optional for values without reference fields.
	Clone func(C) C

	// Validate returns per-field messages. Optional.
	Validate func(C) moduleconfig.FieldErrors

	// DeriveFlags defaults to IdentityFlags.
	DeriveFlags DeriveFlagsFunc[C]
}

// RemoteHardwareBinding binds a page to the remote hardware module.
func RemoteHardwareBinding() Binding[moduleconfig.RemoteHardwareConfig] {
	return Binding[moduleconfig.RemoteHardwareConfig]{
		Module:   moduleconfig.RemoteHardware,
		Resolve:  moduleconfig.ResolveRemoteHardware,
		Snapshot: moduleconfig.SnapshotRemoteHardware,
		Clone:    moduleconfig.RemoteHardwareConfig.Clone,
		Validate: moduleconfig.ValidateRemoteHardware,
	}
}

// Remote hardware form fields.
var (
	EnabledField = Field[moduleconfig.RemoteHardwareConfig, bool]{
		Name: "enabled",
		Get:  func(c moduleconfig.RemoteHardwareConfig) bool { return c.Enabled },
		Set:  func(c *moduleconfig.RemoteHardwareConfig, v bool) { c.Enabled = v },
	}

	AllowUndefinedPinAccessField = Field[moduleconfig.RemoteHardwareConfig, bool]{
		Name: "allowUndefinedPinAccess",
		Get:  func(c moduleconfig.RemoteHardwareConfig) bool { return c.AllowUndefinedPinAccess },
		Set:  func(c *moduleconfig.RemoteHardwareConfig, v bool) { c.AllowUndefinedPinAccess = v },
	}

	AvailablePinsField = Field[moduleconfig.RemoteHardwareConfig, []moduleconfig.RemoteHardwarePin]{
		Name: "availablePins",
		Get: func(c moduleconfig.RemoteHardwareConfig) []moduleconfig.RemoteHardwarePin {
			return c.Clone().AvailablePins
		},
		Set: func(c *moduleconfig.RemoteHardwareConfig, v []moduleconfig.RemoteHardwarePin) {
			c.AvailablePins = append([]moduleconfig.RemoteHardwarePin(nil), v...)
		},
	}
)
