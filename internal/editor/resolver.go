package editor

import (
	"reflect"

	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// ResolveFunc merges an overlay patch over a remote value. It must return nil
// when remote is nil and must not mutate its inputs.
type ResolveFunc[C any] func(remote *C, overlay moduleconfig.Patch) *C

// Resolver memoizes a ResolveFunc on the identity of its inputs. Callers treat
// remote values and patches as immutable, so an unchanged pair of references
// yields the previously returned pointer without recomputing.
type Resolver[C any] struct {
	fn ResolveFunc[C]

	primed  bool
	remote  *C
	overlay moduleconfig.Patch
	result  *C

	computations int
}

// NewResolver returns a Resolver around fn.
func NewResolver[C any](fn ResolveFunc[C]) *Resolver[C] {
	return &Resolver[C]{fn: fn}
}

// Resolve returns the defaults for remote with overlay applied.
func (r *Resolver[C]) Resolve(remote *C, overlay moduleconfig.Patch) *C {
	if r.primed && r.remote == remote && samePatch(r.overlay, overlay) {
		return r.result
	}

	r.primed = true
	r.remote = remote
	r.overlay = overlay
	r.result = r.fn(remote, overlay)
	r.computations++
	return r.result
}

// Computations reports how many times the underlying ResolveFunc ran.
func (r *Resolver[C]) Computations() int {
	return r.computations
}

// samePatch compares by reference. Patches whose dynamic type is not
// comparable never match.
func samePatch(a, b moduleconfig.Patch) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
