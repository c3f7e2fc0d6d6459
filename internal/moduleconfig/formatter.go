package moduleconfig

import (
	"fmt"
	"strings"
)

// FormatEnabled returns a human-readable state for a boolean switch.
func FormatEnabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

// FormatPins returns a compact list of pins, e.g. "12:relay(DIGITAL_WRITE)".
func FormatPins(pins []RemoteHardwarePin) string {
	if len(pins) == 0 {
		return "(none)"
	}
	parts := make([]string, len(pins))
	for i, p := range pins {
		parts[i] = fmt.Sprintf("%d:%s(%s)", p.GpioPin, p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}

// FormatDetailed returns the remote hardware configuration as a labelled block.
// Fields overridden by pending edits are marked with an asterisk.
func (c RemoteHardwareConfig) FormatDetailed(pending Patch) string {
	p, _ := pending.(*RemoteHardwarePatch)
	mark := func(set bool) string {
		if set {
			return " *"
		}
		return ""
	}

	var b strings.Builder

	b.WriteString("=== Remote Hardware Module ===\n")
	b.WriteString(fmt.Sprintf("Enabled:                    %s%s\n",
		FormatEnabled(c.Enabled), mark(p != nil && p.Enabled != nil)))
	b.WriteString(fmt.Sprintf("Allow Undefined Pin Access: %s%s\n",
		FormatEnabled(c.AllowUndefinedPinAccess), mark(p != nil && p.AllowUndefinedPinAccess != nil)))
	b.WriteString(fmt.Sprintf("Available Pins:             %s%s\n",
		FormatPins(c.AvailablePins), mark(p != nil && p.AvailablePins != nil)))

	if p != nil && !p.IsEmpty() {
		b.WriteString("\n* pending edit, not yet confirmed by the node\n")
	}

	return b.String()
}

// FormatCompact returns a single line suitable for terminal listings.
func (c RemoteHardwareConfig) FormatCompact() string {
	return fmt.Sprintf("remoteHardware: %s, undefined pins %s, pins [%s]",
		strings.ToLower(FormatEnabled(c.Enabled)),
		strings.ToLower(FormatEnabled(c.AllowUndefinedPinAccess)),
		FormatPins(c.AvailablePins))
}
