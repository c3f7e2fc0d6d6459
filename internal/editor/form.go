package editor

import (
	"sort"

	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// Form is an observable record mirroring the values a page displays.
// Watchers are notified of field changes only; Reset replaces the values
// silently.
type Form[C any] struct {
	values   C
	clone    func(C) C
	validate func(C) moduleconfig.FieldErrors
	errors   moduleconfig.FieldErrors

	watchers map[int]func(C)
	nextID   int
}

// NewForm creates a form holding initial. clone and validate may be nil.
func NewForm[C any](initial C, clone func(C) C, validate func(C) moduleconfig.FieldErrors) *Form[C] {
	if clone == nil {
		clone = func(v C) C { return v }
	}
	f := &Form[C]{
		clone:    clone,
		validate: validate,
		watchers: make(map[int]func(C)),
	}
	f.values = clone(initial)
	f.revalidate()
	return f
}

// Values returns a copy of the current values.
func (f *Form[C]) Values() C {
	return f.clone(f.values)
}

// Errors returns the current per-field validation messages.
func (f *Form[C]) Errors() moduleconfig.FieldErrors {
	return f.errors
}

// Valid reports whether the current values pass validation.
func (f *Form[C]) Valid() bool {
	return len(f.errors) == 0
}

// Reset replaces all values without notifying watchers.
func (f *Form[C]) Reset(v C) {
	f.values = f.clone(v)
	f.revalidate()
}

// Watch registers fn for field changes and returns a function removing it.
func (f *Form[C]) Watch(fn func(C)) (unwatch func()) {
	id := f.nextID
	f.nextID++
	f.watchers[id] = fn
	return func() { delete(f.watchers, id) }
}

// Update applies mutate to the values and notifies watchers. It is the
// untyped form of SetField.
func (f *Form[C]) Update(mutate func(*C)) {
	mutate(&f.values)
	f.revalidate()
	f.notify()
}

func (f *Form[C]) revalidate() {
	if f.validate == nil {
		f.errors = nil
		return
	}
	f.errors = f.validate(f.values)
}

func (f *Form[C]) notify() {
	ids := make([]int, 0, len(f.watchers))
	for id := range f.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if fn, ok := f.watchers[id]; ok {
			fn(f.Values())
		}
	}
}

// Field is a typed accessor for one field of C.
type Field[C, V any] struct {
	Name string
	Get  func(C) V
	Set  func(*C, V)
}

// SetField writes v into field and notifies watchers, even when the value did
// not change.
func SetField[C, V any](f *Form[C], field Field[C, V], v V) {
	f.Update(func(c *C) { field.Set(c, v) })
}

// GetField reads field from the form's current values.
func GetField[C, V any](f *Form[C], field Field[C, V]) V {
	return field.Get(f.values)
}
