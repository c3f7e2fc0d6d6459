package editor

// AuxFlags carries auxiliary UI state derived from a page's resolved
// defaults. The identity derivation keeps the resolved value unchanged.
type AuxFlags[C any] struct {
	Resolved *C
}

// DeriveFlagsFunc computes AuxFlags from resolved defaults, which may be nil.
type DeriveFlagsFunc[C any] func(resolved *C) AuxFlags[C]

// IdentityFlags is the default DeriveFlagsFunc.
func IdentityFlags[C any](resolved *C) AuxFlags[C] {
	return AuxFlags[C]{Resolved: resolved}
}
