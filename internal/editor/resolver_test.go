package editor

import (
	"reflect"
	"testing"

	"github.com/muurk/meshcfg/internal/moduleconfig"
)

func bp(b bool) *bool { return &b }

func TestResolverMergeLaw(t *testing.T) {
	pins := []moduleconfig.RemoteHardwarePin{{GpioPin: 4, Name: "relay", Type: moduleconfig.PinTypeDigitalWrite}}
	remote := &moduleconfig.RemoteHardwareConfig{Enabled: false, AllowUndefinedPinAccess: true, AvailablePins: pins}

	tests := []struct {
		name    string
		overlay moduleconfig.Patch
		want    moduleconfig.RemoteHardwareConfig
	}{
		{
			name:    "no overlay",
			overlay: nil,
			want:    *remote,
		},
		{
			name:    "overlay enabled only",
			overlay: &moduleconfig.RemoteHardwarePatch{Enabled: bp(true)},
			want:    moduleconfig.RemoteHardwareConfig{Enabled: true, AllowUndefinedPinAccess: true, AvailablePins: pins},
		},
		{
			name: "overlay every field",
			overlay: &moduleconfig.RemoteHardwarePatch{
				Enabled:                 bp(true),
				AllowUndefinedPinAccess: bp(false),
				AvailablePins:           []moduleconfig.RemoteHardwarePin{},
			},
			want: moduleconfig.RemoteHardwareConfig{Enabled: true, AvailablePins: []moduleconfig.RemoteHardwarePin{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(moduleconfig.ResolveRemoteHardware)
			got := r.Resolve(remote, tt.overlay)
			if got == nil {
				t.Fatal("Resolve() = nil")
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("Resolve() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestResolverAbsenceLaw(t *testing.T) {
	r := NewResolver(moduleconfig.ResolveRemoteHardware)

	if got := r.Resolve(nil, nil); got != nil {
		t.Errorf("Resolve(nil, nil) = %+v, want nil", got)
	}
	if got := r.Resolve(nil, &moduleconfig.RemoteHardwarePatch{Enabled: bp(true)}); got != nil {
		t.Errorf("Resolve(nil, overlay) = %+v, want nil", got)
	}
}

func TestResolverMemoizesOnIdentity(t *testing.T) {
	r := NewResolver(moduleconfig.ResolveRemoteHardware)
	remote := &moduleconfig.RemoteHardwareConfig{Enabled: true}
	overlay := &moduleconfig.RemoteHardwarePatch{Enabled: bp(false)}

	first := r.Resolve(remote, overlay)
	second := r.Resolve(remote, overlay)
	if first != second {
		t.Error("same references should return the memoized result")
	}
	if r.Computations() != 1 {
		t.Errorf("Computations() = %d, want 1", r.Computations())
	}

	// value-identical but distinct references recompute to the same value
	churned := r.Resolve(&moduleconfig.RemoteHardwareConfig{Enabled: true}, &moduleconfig.RemoteHardwarePatch{Enabled: bp(false)})
	if r.Computations() != 2 {
		t.Errorf("Computations() = %d, want 2", r.Computations())
	}
	if !reflect.DeepEqual(*churned, *first) {
		t.Errorf("reference churn changed the result: %+v vs %+v", *churned, *first)
	}
}

type valuePatch struct{ pins []int }

func (valuePatch) Module() moduleconfig.Name                              { return "valuePatch" }
func (valuePatch) IsEmpty() bool                                          { return false }
func (v valuePatch) Merge(moduleconfig.Patch) (moduleconfig.Patch, error) { return v, nil }

func TestSamePatch(t *testing.T) {
	p := &moduleconfig.RemoteHardwarePatch{}

	tests := []struct {
		name string
		a, b moduleconfig.Patch
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", p, nil, false},
		{"same pointer", p, p, true},
		{"equal values distinct pointers", p, &moduleconfig.RemoteHardwarePatch{}, false},
		{"non comparable type", valuePatch{}, valuePatch{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := samePatch(tt.a, tt.b); got != tt.want {
				t.Errorf("samePatch() = %v, want %v", got, tt.want)
			}
		})
	}
}
