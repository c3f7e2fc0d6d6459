package editor

import (
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// State is a page lifecycle state.
type State int

const (
	Uninitialized State = iota
	Bound
	Editing
	Flushing
	Discarding
	Unmounted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Bound:
		return "Bound"
	case Editing:
		return "Editing"
	case Flushing:
		return "Flushing"
	case Discarding:
		return "Discarding"
	case Unmounted:
		return "Unmounted"
	default:
		return "Unknown"
	}
}

// OverlayStore is the edit overlay as seen by a page. *overlay.Store
// satisfies it.
type OverlayStore interface {
	Get(module moduleconfig.Name) (moduleconfig.Patch, bool)
	Set(module moduleconfig.Name, partial moduleconfig.Patch) error
	Clear(module moduleconfig.Name)
	Subscribe(fn func(module moduleconfig.Name, patch moduleconfig.Patch)) (unsubscribe func())
}

// Observer receives page events. Implementations must not call back into the
// page.
type Observer interface {
	Transition(module moduleconfig.Name, from, to State)
	Flushed(module moduleconfig.Name, err error)
	Discarded(module moduleconfig.Name)
}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) Transition(module moduleconfig.Name, from, to State) {
	for _, obs := range o {
		obs.Transition(module, from, to)
	}
}

func (o Observers) Flushed(module moduleconfig.Name, err error) {
	for _, obs := range o {
		obs.Flushed(module, err)
	}
}

func (o Observers) Discarded(module moduleconfig.Name) {
	for _, obs := range o {
		obs.Discarded(module)
	}
}

// Option configures a Page.
type Option func(*pageOptions)

type pageOptions struct {
	window   time.Duration
	observer Observer
}

// WithWindow sets the coalescing window. Non-positive values select
// DefaultWindow.
func WithWindow(d time.Duration) Option {
	return func(o *pageOptions) { o.window = d }
}

// WithObserver attaches an observer.
func WithObserver(obs Observer) Option {
	return func(o *pageOptions) { o.observer = obs }
}

// Page binds one module's form to the remote value and the edit overlay.
// Page is not safe for concurrent use; drive it from a single event loop.
type Page[C any] struct {
	binding  Binding[C]
	store    OverlayStore
	resolver *Resolver[C]
	dispatch *Dispatcher[moduleconfig.Patch]
	form     *Form[C]
	observer Observer

	state    State
	remote   *C
	resolved *C
	flags    AuxFlags[C]
	lastErr  error

	unsubscribe func()
	unwatch     func()
}

// NewPage creates a page in the Uninitialized state. Call Mount to bind it.
func NewPage[C any](binding Binding[C], store OverlayStore, sched Scheduler, opts ...Option) *Page[C] {
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}
	if binding.DeriveFlags == nil {
		binding.DeriveFlags = IdentityFlags[C]
	}

	var zero C
	p := &Page[C]{
		binding:  binding,
		store:    store,
		resolver: NewResolver(binding.Resolve),
		form:     NewForm(zero, binding.Clone, binding.Validate),
		observer: o.observer,
		state:    Uninitialized,
	}
	p.dispatch = NewDispatcher(sched, o.window, p.flush)
	p.flags = binding.DeriveFlags(nil)
	return p
}

// Mount subscribes the page to the overlay and form and binds it to remote.
// A nil remote leaves the page Uninitialized until SyncRemote supplies one.
func (p *Page[C]) Mount(remote *C) {
	if p.state == Unmounted || p.unsubscribe != nil {
		return
	}

	p.unsubscribe = p.store.Subscribe(p.onOverlay)
	p.unwatch = p.form.Watch(p.onFormChange)
	p.remote = remote
	p.refresh()
}

// SyncRemote replaces the remote value after a new node snapshot. A nil
// remote cancels any pending write and returns the page to Uninitialized.
func (p *Page[C]) SyncRemote(remote *C) {
	if p.state == Unmounted {
		return
	}
	p.remote = remote
	p.refresh()
}

// Discard abandons pending edits: it cancels any pending write, resets the
// form to the remote value and clears the module's overlay slice. It reports
// false and does nothing when there is no remote value to revert to.
func (p *Page[C]) Discard() bool {
	if p.remote == nil {
		return false
	}
	if p.state != Bound && p.state != Editing {
		return false
	}

	p.transition(Discarding)
	p.dispatch.Cancel()
	p.lastErr = nil
	p.form.Reset(*p.remote)
	p.store.Clear(p.binding.Module)
	p.refresh()
	p.transition(Bound)

	if p.observer != nil {
		p.observer.Discarded(p.binding.Module)
	}
	return true
}

// Unmount tears the page down. Any pending write is cancelled; later events
// are ignored.
func (p *Page[C]) Unmount() {
	if p.state == Unmounted {
		return
	}

	p.dispatch.Cancel()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	if p.unwatch != nil {
		p.unwatch()
	}
	p.transition(Unmounted)
}

// Module returns the module this page edits.
func (p *Page[C]) Module() moduleconfig.Name { return p.binding.Module }

// State returns the current lifecycle state.
func (p *Page[C]) State() State { return p.state }

// Form returns the page's form.
func (p *Page[C]) Form() *Form[C] { return p.form }

// Remote returns the current remote value, or nil.
func (p *Page[C]) Remote() *C { return p.remote }

// Resolved returns the current resolved defaults, or nil.
func (p *Page[C]) Resolved() *C { return p.resolved }

// Flags returns the auxiliary flags derived from the resolved defaults.
func (p *Page[C]) Flags() AuxFlags[C] { return p.flags }

// PendingWrite reports whether a coalesced write is waiting for its window.
func (p *Page[C]) PendingWrite() bool { return p.dispatch.Pending() }

// Dirty reports whether the overlay holds edits for this page's module.
func (p *Page[C]) Dirty() bool {
	_, ok := p.store.Get(p.binding.Module)
	return ok
}

// Err returns the error of the most recent overlay write, if it failed.
func (p *Page[C]) Err() error { return p.lastErr }

func (p *Page[C]) onOverlay(module moduleconfig.Name, _ moduleconfig.Patch) {
	if module != p.binding.Module || p.state == Unmounted {
		return
	}
	p.refresh()
}

func (p *Page[C]) onFormChange(values C) {
	if p.remote == nil {
		return
	}
	switch p.state {
	case Bound:
		p.transition(Editing)
	case Editing:
	default:
		return
	}
	p.dispatch.Schedule(p.binding.Snapshot(values))
}

func (p *Page[C]) flush(patch moduleconfig.Patch) {
	if p.state != Editing {
		return
	}

	p.transition(Flushing)
	err := p.store.Set(p.binding.Module, patch)
	p.lastErr = err
	if err != nil {
		logging.Error("Failed to write overlay",
			zap.String("module", string(p.binding.Module)),
			zap.Error(err),
		)
	}
	if p.observer != nil {
		p.observer.Flushed(p.binding.Module, err)
	}
	p.transition(Bound)
}

// refresh re-resolves the defaults and re-synchronizes an idle form with them.
func (p *Page[C]) refresh() {
	current, _ := p.store.Get(p.binding.Module)
	resolved := p.resolver.Resolve(p.remote, current)
	if resolved == p.resolved {
		return
	}

	p.resolved = resolved
	p.flags = p.binding.DeriveFlags(resolved)
	if resolved == nil {
		// The node config is gone: nothing to edit until a new snapshot.
		if p.state != Uninitialized {
			p.dispatch.Cancel()
			p.transition(Uninitialized)
		}
		return
	}

	switch p.state {
	case Uninitialized:
		p.form.Reset(*resolved)
		p.transition(Bound)
	case Bound:
		if !reflect.DeepEqual(p.form.Values(), *resolved) {
			p.form.Reset(*resolved)
		}
	}
}

func (p *Page[C]) transition(to State) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	logging.LogTransition(string(p.binding.Module), from.String(), to.String())
	if p.observer != nil {
		p.observer.Transition(p.binding.Module, from, to)
	}
}
