package moduleconfig

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func bp(b bool) *bool { return &b }

func TestResolveRemoteHardware(t *testing.T) {
	pins := []RemoteHardwarePin{{GpioPin: 12, Name: "relay", Type: PinTypeDigitalWrite}}

	tests := []struct {
		name    string
		remote  *RemoteHardwareConfig
		overlay Patch
		want    *RemoteHardwareConfig
	}{
		{
			name:    "absent remote resolves to absent",
			remote:  nil,
			overlay: &RemoteHardwarePatch{Enabled: bp(true)},
			want:    nil,
		},
		{
			name:    "absent overlay keeps remote structure",
			remote:  &RemoteHardwareConfig{Enabled: true, AvailablePins: pins},
			overlay: nil,
			want:    &RemoteHardwareConfig{Enabled: true, AvailablePins: pins},
		},
		{
			name:    "typed nil overlay is treated as absent",
			remote:  &RemoteHardwareConfig{Enabled: true},
			overlay: (*RemoteHardwarePatch)(nil),
			want:    &RemoteHardwareConfig{Enabled: true},
		},
		{
			name:    "overlay field wins",
			remote:  &RemoteHardwareConfig{Enabled: false, AllowUndefinedPinAccess: true},
			overlay: &RemoteHardwarePatch{Enabled: bp(true)},
			want:    &RemoteHardwareConfig{Enabled: true, AllowUndefinedPinAccess: true},
		},
		{
			name:    "overlay false wins over remote true",
			remote:  &RemoteHardwareConfig{Enabled: true},
			overlay: &RemoteHardwarePatch{Enabled: bp(false)},
			want:    &RemoteHardwareConfig{Enabled: false},
		},
		{
			name:    "empty overlay pin list replaces remote pins",
			remote:  &RemoteHardwareConfig{AvailablePins: pins},
			overlay: &RemoteHardwarePatch{AvailablePins: []RemoteHardwarePin{}},
			want:    &RemoteHardwareConfig{AvailablePins: []RemoteHardwarePin{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRemoteHardware(tt.remote, tt.overlay)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveRemoteHardware() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveRemoteHardwareDoesNotAliasRemote(t *testing.T) {
	remote := &RemoteHardwareConfig{AvailablePins: []RemoteHardwarePin{{GpioPin: 1, Name: "a", Type: PinTypeDigitalRead}}}

	resolved := ResolveRemoteHardware(remote, nil)
	resolved.AvailablePins[0].Name = "changed"
	resolved.Enabled = true

	if remote.AvailablePins[0].Name != "a" || remote.Enabled {
		t.Errorf("remote was modified through resolved value: %+v", remote)
	}
}

func TestSnapshotRoundTripsThroughResolve(t *testing.T) {
	values := RemoteHardwareConfig{Enabled: true, AllowUndefinedPinAccess: true}
	remote := &RemoteHardwareConfig{}

	got := ResolveRemoteHardware(remote, SnapshotRemoteHardware(values))
	want := RemoteHardwareConfig{Enabled: true, AllowUndefinedPinAccess: true, AvailablePins: []RemoteHardwarePin{}}

	if !reflect.DeepEqual(*got, want) {
		t.Errorf("resolve(snapshot) = %+v, want %+v", *got, want)
	}
}

func TestRemoteHardwarePatchMerge(t *testing.T) {
	base := &RemoteHardwarePatch{Enabled: bp(true), AllowUndefinedPinAccess: bp(true)}
	next := &RemoteHardwarePatch{Enabled: bp(false)}

	merged, err := base.Merge(next)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	m := merged.(*RemoteHardwarePatch)
	if *m.Enabled != false {
		t.Errorf("Enabled = %v, want false (last write wins)", *m.Enabled)
	}
	if m.AllowUndefinedPinAccess == nil || *m.AllowUndefinedPinAccess != true {
		t.Errorf("AllowUndefinedPinAccess should be kept from base")
	}
	if *base.Enabled != true {
		t.Error("Merge() must not modify the receiver")
	}
	if m == base || m == next {
		t.Error("Merge() must return a new patch")
	}
}

func TestRemoteHardwarePatchMergeNil(t *testing.T) {
	var base *RemoteHardwarePatch

	merged, err := base.Merge(nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !merged.IsEmpty() {
		t.Errorf("nil.Merge(nil) should be empty, got %+v", merged)
	}
}

type otherPatch struct{}

func (otherPatch) Module() Name               { return "neighborInfo" }
func (otherPatch) Merge(Patch) (Patch, error) { return otherPatch{}, nil }
func (otherPatch) IsEmpty() bool              { return false }

func TestRemoteHardwarePatchMergeRejectsOtherModule(t *testing.T) {
	_, err := (&RemoteHardwarePatch{}).Merge(otherPatch{})
	if !IsModuleMismatch(err) {
		t.Errorf("Merge(other module) error = %v, want module mismatch", err)
	}
}

func TestPendingEdits(t *testing.T) {
	var pe PendingEdits
	if !pe.IsEmpty() {
		t.Error("zero PendingEdits should be empty")
	}

	if err := pe.Put(&RemoteHardwarePatch{Enabled: bp(true)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(pe.Patches()) != 1 {
		t.Errorf("Patches() len = %d, want 1", len(pe.Patches()))
	}

	if err := pe.Put(otherPatch{}); !IsUnknownModule(err) {
		t.Errorf("Put(other) error = %v, want unknown module", err)
	}
}

func TestPendingEditsKeepEmptyPinList(t *testing.T) {
	codecs := []struct {
		name      string
		marshal   func(any) ([]byte, error)
		unmarshal func([]byte, any) error
	}{
		{name: "json", marshal: json.Marshal, unmarshal: json.Unmarshal},
		{name: "yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal},
	}

	tests := []struct {
		name     string
		patch    *RemoteHardwarePatch
		wantPins []RemoteHardwarePin
	}{
		{
			name:     "all pins removed",
			patch:    SnapshotRemoteHardware(RemoteHardwareConfig{Enabled: true}).(*RemoteHardwarePatch),
			wantPins: []RemoteHardwarePin{},
		},
		{
			name:     "pins absent",
			patch:    &RemoteHardwarePatch{Enabled: bp(false)},
			wantPins: nil,
		},
		{
			name:     "pins set",
			patch:    &RemoteHardwarePatch{AvailablePins: []RemoteHardwarePin{{GpioPin: 3, Name: "gpio3", Type: PinTypeDigitalRead}}},
			wantPins: []RemoteHardwarePin{{GpioPin: 3, Name: "gpio3", Type: PinTypeDigitalRead}},
		},
	}

	remote := &RemoteHardwareConfig{
		AvailablePins: []RemoteHardwarePin{{GpioPin: 7, Name: "door", Type: PinTypeDigitalRead}},
	}

	for _, codec := range codecs {
		for _, tt := range tests {
			t.Run(codec.name+"/"+tt.name, func(t *testing.T) {
				data, err := codec.marshal(PendingEdits{RemoteHardware: tt.patch})
				if err != nil {
					t.Fatalf("marshal error = %v", err)
				}

				var got PendingEdits
				if err := codec.unmarshal(data, &got); err != nil {
					t.Fatalf("unmarshal error = %v\n%s", err, data)
				}
				if got.RemoteHardware == nil {
					t.Fatalf("decoded patch is nil\n%s", data)
				}

				pins := got.RemoteHardware.AvailablePins
				if (pins == nil) != (tt.wantPins == nil) || !reflect.DeepEqual(pins, tt.wantPins) {
					t.Errorf("AvailablePins = %#v, want %#v\n%s", pins, tt.wantPins, data)
				}

				resolved := ResolveRemoteHardware(remote, got.RemoteHardware)
				want := ResolveRemoteHardware(remote, tt.patch)
				if !reflect.DeepEqual(resolved.AvailablePins, want.AvailablePins) {
					t.Errorf("resolved pins = %+v, want %+v", resolved.AvailablePins, want.AvailablePins)
				}
			})
		}
	}
}

func TestParseModuleConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(*testing.T, *ModuleConfig)
	}{
		{
			name:  "json snapshot",
			input: `{"node":"!a1b2c3d4","remoteHardware":{"enabled":true,"availablePins":[{"gpioPin":12,"name":"relay","type":"DIGITAL_WRITE"}]}}`,
			check: func(t *testing.T, c *ModuleConfig) {
				if c.Node != "!a1b2c3d4" {
					t.Errorf("Node = %q", c.Node)
				}
				if c.RemoteHardware == nil || !c.RemoteHardware.Enabled {
					t.Fatalf("RemoteHardware = %+v", c.RemoteHardware)
				}
				if len(c.RemoteHardware.AvailablePins) != 1 || c.RemoteHardware.AvailablePins[0].GpioPin != 12 {
					t.Errorf("AvailablePins = %+v", c.RemoteHardware.AvailablePins)
				}
			},
		},
		{
			name:  "yaml snapshot",
			input: "node: '!a1b2c3d4'\nremote_hardware:\n  enabled: false\n  allow_undefined_pin_access: true\n",
			check: func(t *testing.T, c *ModuleConfig) {
				if c.RemoteHardware == nil || c.RemoteHardware.Enabled || !c.RemoteHardware.AllowUndefinedPinAccess {
					t.Errorf("RemoteHardware = %+v", c.RemoteHardware)
				}
			},
		},
		{
			name:  "module absent",
			input: `{"node":"!a1b2c3d4"}`,
			check: func(t *testing.T, c *ModuleConfig) {
				if c.RemoteHardware != nil {
					t.Errorf("RemoteHardware = %+v, want nil", c.RemoteHardware)
				}
			},
		},
		{name: "empty", input: "   \n", wantErr: true},
		{name: "broken json", input: `{"remoteHardware":`, wantErr: true},
		{name: "broken yaml", input: "remote_hardware: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModuleConfig([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModuleConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsParseError(err) {
					t.Errorf("expected parse error, got %T", err)
				}
				return
			}
			tt.check(t, got)
		})
	}
}
