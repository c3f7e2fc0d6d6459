package moduleconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Name identifies a module configuration block (e.g. "remoteHardware").
type Name string

const (
	// RemoteHardware is the remote hardware (GPIO) module.
	RemoteHardware Name = "remoteHardware"
)

// Patch is a partial module value holding only the fields a user changed.
type Patch interface {
	// Module returns the module this patch belongs to.
	Module() Name

	// Merge returns a new patch with next layered over the receiver.
	// Fields present in next win; the operands are not modified.
	Merge(next Patch) (Patch, error)

	// IsEmpty reports whether the patch carries no fields at all.
	IsEmpty() bool
}

// PinType is the kind of access granted on a remote hardware pin.
type PinType string

const (
	PinTypeUnknown      PinType = "UNKNOWN"
	PinTypeDigitalRead  PinType = "DIGITAL_READ"
	PinTypeDigitalWrite PinType = "DIGITAL_WRITE"
)

// RemoteHardwarePin is a GPIO pin that may be accessed remotely over the mesh.
type RemoteHardwarePin struct {
	GpioPin uint32  `json:"gpioPin" yaml:"gpio_pin" validate:"lte=48"`
	Name    string  `json:"name" yaml:"name" validate:"max=14"`
	Type    PinType `json:"type" yaml:"type" validate:"oneof=UNKNOWN DIGITAL_READ DIGITAL_WRITE"`
}

// RemoteHardwareConfig is the remote hardware module value as confirmed by the node.
type RemoteHardwareConfig struct {
	// Enabled turns the module on
	Enabled bool `json:"enabled" yaml:"enabled"`

	// AllowUndefinedPinAccess permits access to pins not listed in AvailablePins
	AllowUndefinedPinAccess bool `json:"allowUndefinedPinAccess" yaml:"allow_undefined_pin_access"`

	// AvailablePins lists the pins exposed to the mesh (at most 4 on current firmware)
	AvailablePins []RemoteHardwarePin `json:"availablePins,omitempty" yaml:"available_pins,omitempty" validate:"max=4,dive"`
}

// RemoteHardwarePatch holds pending remote hardware edits. Nil fields are
// absent; an empty, non-nil AvailablePins removes every pin.
type RemoteHardwarePatch struct {
	Enabled                 *bool               `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	AllowUndefinedPinAccess *bool               `json:"allowUndefinedPinAccess,omitempty" yaml:"allow_undefined_pin_access,omitempty"`
	AvailablePins           []RemoteHardwarePin `json:"availablePins,omitempty" yaml:"available_pins,omitempty"`
}

// Module implements Patch.
func (p *RemoteHardwarePatch) Module() Name {
	return RemoteHardware
}

// remoteHardwarePatchDoc is the encoded form of a RemoteHardwarePatch. The
// pin list is a pointer so an empty list, meaning "no pins", is kept apart
// from an absent one.
type remoteHardwarePatchDoc struct {
	Enabled                 *bool                `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	AllowUndefinedPinAccess *bool                `json:"allowUndefinedPinAccess,omitempty" yaml:"allow_undefined_pin_access,omitempty"`
	AvailablePins           *[]RemoteHardwarePin `json:"availablePins,omitempty" yaml:"available_pins,omitempty"`
}

func (p *RemoteHardwarePatch) toDoc() remoteHardwarePatchDoc {
	c := p.clone()
	doc := remoteHardwarePatchDoc{
		Enabled:                 c.Enabled,
		AllowUndefinedPinAccess: c.AllowUndefinedPinAccess,
	}
	if c.AvailablePins != nil {
		doc.AvailablePins = &c.AvailablePins
	}
	return doc
}

func (p *RemoteHardwarePatch) fromDoc(doc remoteHardwarePatchDoc) {
	*p = RemoteHardwarePatch{
		Enabled:                 doc.Enabled,
		AllowUndefinedPinAccess: doc.AllowUndefinedPinAccess,
	}
	if doc.AvailablePins != nil {
		pins := *doc.AvailablePins
		if pins == nil {
			pins = []RemoteHardwarePin{}
		}
		p.AvailablePins = pins
	}
}

// MarshalJSON writes an empty pin list as [] and omits an absent one.
func (p *RemoteHardwarePatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toDoc())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *RemoteHardwarePatch) UnmarshalJSON(data []byte) error {
	var doc remoteHardwarePatchDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	p.fromDoc(doc)
	return nil
}

// MarshalYAML writes an empty pin list as [] and omits an absent one.
func (p *RemoteHardwarePatch) MarshalYAML() (any, error) {
	return p.toDoc(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *RemoteHardwarePatch) UnmarshalYAML(value *yaml.Node) error {
	var doc remoteHardwarePatchDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	p.fromDoc(doc)
	return nil
}

// IsEmpty implements Patch. An empty, non-nil pin list is an edit.
func (p *RemoteHardwarePatch) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Enabled == nil && p.AllowUndefinedPinAccess == nil && p.AvailablePins == nil
}

// Merge implements Patch. A nil next leaves the receiver's fields unchanged.
func (p *RemoteHardwarePatch) Merge(next Patch) (Patch, error) {
	merged := p.clone()

	if next == nil {
		return merged, nil
	}

	n, ok := next.(*RemoteHardwarePatch)
	if !ok {
		return nil, NewModuleMismatchError(RemoteHardware, next.Module())
	}
	if n == nil {
		return merged, nil
	}

	if n.Enabled != nil {
		merged.Enabled = boolPtr(*n.Enabled)
	}
	if n.AllowUndefinedPinAccess != nil {
		merged.AllowUndefinedPinAccess = boolPtr(*n.AllowUndefinedPinAccess)
	}
	if n.AvailablePins != nil {
		merged.AvailablePins = clonePins(n.AvailablePins)
	}

	return merged, nil
}

func (p *RemoteHardwarePatch) clone() *RemoteHardwarePatch {
	out := &RemoteHardwarePatch{}
	if p == nil {
		return out
	}
	if p.Enabled != nil {
		out.Enabled = boolPtr(*p.Enabled)
	}
	if p.AllowUndefinedPinAccess != nil {
		out.AllowUndefinedPinAccess = boolPtr(*p.AllowUndefinedPinAccess)
	}
	if p.AvailablePins != nil {
		out.AvailablePins = clonePins(p.AvailablePins)
	}
	return out
}

// Clone returns a deep copy of the configuration.
func (c RemoteHardwareConfig) Clone() RemoteHardwareConfig {
	c.AvailablePins = clonePins(c.AvailablePins)
	return c
}

// ResolveRemoteHardware computes the value a form should start from: every field
// present in overlay wins, all others come from remote. It returns nil when
// remote is nil (no node context, nothing to edit). An overlay that is not a
// remote hardware patch is ignored.
func ResolveRemoteHardware(remote *RemoteHardwareConfig, overlay Patch) *RemoteHardwareConfig {
	if remote == nil {
		return nil
	}

	resolved := remote.Clone()

	p, ok := overlay.(*RemoteHardwarePatch)
	if !ok || p == nil {
		return &resolved
	}

	if p.Enabled != nil {
		resolved.Enabled = *p.Enabled
	}
	if p.AllowUndefinedPinAccess != nil {
		resolved.AllowUndefinedPinAccess = *p.AllowUndefinedPinAccess
	}
	if p.AvailablePins != nil {
		resolved.AvailablePins = clonePins(p.AvailablePins)
	}

	return &resolved
}

// SnapshotRemoteHardware expresses a complete form value as a patch carrying
// every field.
func SnapshotRemoteHardware(values RemoteHardwareConfig) Patch {
	pins := clonePins(values.AvailablePins)
	if pins == nil {
		pins = []RemoteHardwarePin{}
	}
	return &RemoteHardwarePatch{
		Enabled:                 boolPtr(values.Enabled),
		AllowUndefinedPinAccess: boolPtr(values.AllowUndefinedPinAccess),
		AvailablePins:           pins,
	}
}

// ModuleConfig is a node's complete module configuration as last confirmed by
// the node. It is replaced wholesale whenever a new snapshot arrives.
type ModuleConfig struct {
	// Node is the node identifier the snapshot was read from (e.g. "!a1b2c3d4")
	Node string `json:"node,omitempty" yaml:"node,omitempty"`

	RemoteHardware *RemoteHardwareConfig `json:"remoteHardware,omitempty" yaml:"remote_hardware,omitempty"`
}

// PendingEdits is the persistable form of an edit overlay, one patch per module.
type PendingEdits struct {
	RemoteHardware *RemoteHardwarePatch `json:"remoteHardware,omitempty" yaml:"remote_hardware,omitempty"`
}

// Patches returns the non-empty patches held by p.
func (p *PendingEdits) Patches() []Patch {
	if p == nil {
		return nil
	}

	var patches []Patch
	if !p.RemoteHardware.IsEmpty() {
		patches = append(patches, p.RemoteHardware)
	}
	return patches
}

// IsEmpty reports whether no module has pending edits.
func (p *PendingEdits) IsEmpty() bool {
	return len(p.Patches()) == 0
}

// Put stores patch in the slot of its module.
func (p *PendingEdits) Put(patch Patch) error {
	switch v := patch.(type) {
	case *RemoteHardwarePatch:
		p.RemoteHardware = v
		return nil
	case nil:
		return NewUnknownModuleError("")
	default:
		return NewUnknownModuleError(patch.Module())
	}
}

// ParseModuleConfig parses a module configuration snapshot. JSON documents are
// detected by their leading brace; anything else is parsed as YAML.
func ParseModuleConfig(data []byte) (*ModuleConfig, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, NewParseError("empty module config document", nil)
	}

	var config ModuleConfig
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &config); err != nil {
			return nil, NewParseError("failed to parse JSON module config", err)
		}
		return &config, nil
	}

	if err := yaml.Unmarshal(trimmed, &config); err != nil {
		return nil, NewParseError("failed to parse YAML module config", err)
	}
	return &config, nil
}

// String returns a one-line summary of the remote hardware configuration.
func (c RemoteHardwareConfig) String() string {
	return fmt.Sprintf("remoteHardware{enabled=%v allowUndefinedPinAccess=%v pins=%d}",
		c.Enabled, c.AllowUndefinedPinAccess, len(c.AvailablePins))
}

func boolPtr(b bool) *bool {
	return &b
}

func clonePins(pins []RemoteHardwarePin) []RemoteHardwarePin {
	if pins == nil {
		return nil
	}
	out := make([]RemoteHardwarePin, len(pins))
	copy(out, pins)
	return out
}
