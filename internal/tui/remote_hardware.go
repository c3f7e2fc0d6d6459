package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/meshcfg/internal/editor"
	"github.com/muurk/meshcfg/internal/i18n"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// maxPins is the number of pins current firmware accepts.
const maxPins = 4

// Fixed rows before the pin list.
const (
	rowEnabled = iota
	rowAllowUndefined
	firstPinRow
)

const labelPrefix = "config.module.remoteHardware."

// remoteHardwareKeyMap defines key bindings for the remote hardware screen
type remoteHardwareKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Add     key.Binding
	Remove  key.Binding
	Discard key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k remoteHardwareKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Toggle, k.Discard, k.Quit, k.Help}
}

// FullHelp returns keybindings for the expanded help view
func (k remoteHardwareKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.Add, k.Remove},
		{k.Discard, k.Help, k.Quit},
	}
}

func newRemoteHardwareKeyMap(tr *i18n.Translator) remoteHardwareKeyMap {
	return remoteHardwareKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓", tr.T("help.move")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", tr.T("help.move")),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", tr.T("help.toggle")),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", tr.T("help.add")),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", tr.T("help.remove")),
		),
		Discard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", tr.T("help.discard")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", tr.T("help.help")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", tr.T("help.quit")),
		),
	}
}

// RemoteHardwareModel is the editor screen for the remote hardware module.
// Key presses write into the page's form; the page takes care of debouncing
// the overlay writes.
type RemoteHardwareModel struct {
	Page    *editor.Page[moduleconfig.RemoteHardwareConfig]
	Cursor  int
	Keys    remoteHardwareKeyMap
	Help    help.Model
	Spinner spinner.Model

	tr *i18n.Translator
}

// NewRemoteHardwareModel creates the screen for page.
func NewRemoteHardwareModel(page *editor.Page[moduleconfig.RemoteHardwareConfig], tr *i18n.Translator) RemoteHardwareModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return RemoteHardwareModel{
		Page:    page,
		Keys:    newRemoteHardwareKeyMap(tr),
		Help:    help.New(),
		Spinner: s,
		tr:      tr,
	}
}

// Editable reports whether the page accepts input: it needs a node
// configuration to edit.
func (m RemoteHardwareModel) Editable() bool {
	if m.Page.Remote() == nil {
		return false
	}
	switch m.Page.State() {
	case editor.Bound, editor.Editing:
		return true
	default:
		return false
	}
}

func (m RemoteHardwareModel) pins() []moduleconfig.RemoteHardwarePin {
	return editor.GetField(m.Page.Form(), editor.AvailablePinsField)
}

func (m RemoteHardwareModel) rowCount() int {
	return firstPinRow + len(m.pins())
}

// Update handles key presses and spinner ticks.
func (m RemoteHardwareModel) Update(msg tea.Msg) (RemoteHardwareModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.Page.Remote() != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg), nil
	}

	return m, nil
}

func (m RemoteHardwareModel) handleKey(msg tea.KeyMsg) RemoteHardwareModel {
	if key.Matches(msg, m.Keys.Help) {
		m.Help.ShowAll = !m.Help.ShowAll
		return m
	}
	if !m.Editable() {
		return m
	}

	form := m.Page.Form()

	switch {
	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}

	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < m.rowCount()-1 {
			m.Cursor++
		}

	case key.Matches(msg, m.Keys.Toggle):
		switch m.Cursor {
		case rowEnabled:
			editor.SetField(form, editor.EnabledField, !editor.GetField(form, editor.EnabledField))
		case rowAllowUndefined:
			editor.SetField(form, editor.AllowUndefinedPinAccessField, !editor.GetField(form, editor.AllowUndefinedPinAccessField))
		default:
			pins := m.pins()
			i := m.Cursor - firstPinRow
			if i < len(pins) {
				pins[i].Type = nextPinType(pins[i].Type)
				editor.SetField(form, editor.AvailablePinsField, pins)
			}
		}

	case key.Matches(msg, m.Keys.Add):
		pins := m.pins()
		if len(pins) >= maxPins {
			return m
		}
		gpio := nextFreeGpio(pins)
		pins = append(pins, moduleconfig.RemoteHardwarePin{
			GpioPin: gpio,
			Name:    fmt.Sprintf("gpio%d", gpio),
			Type:    moduleconfig.PinTypeDigitalRead,
		})
		editor.SetField(form, editor.AvailablePinsField, pins)
		m.Cursor = firstPinRow + len(pins) - 1

	case key.Matches(msg, m.Keys.Remove):
		pins := m.pins()
		i := m.Cursor - firstPinRow
		if i < 0 || i >= len(pins) {
			return m
		}
		pins = append(pins[:i], pins[i+1:]...)
		editor.SetField(form, editor.AvailablePinsField, pins)
		m.clampCursor()

	case key.Matches(msg, m.Keys.Discard):
		m.Page.Discard()
		m.clampCursor()
	}

	return m
}

func (m *RemoteHardwareModel) clampCursor() {
	if last := m.rowCount() - 1; m.Cursor > last {
		m.Cursor = last
	}
}

// View renders the screen body. The caller wraps it in the application
// container.
func (m RemoteHardwareModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle(m.tr.T(labelPrefix + "title")))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.tr.T(labelPrefix + "description")))
	b.WriteString("\n\n")

	if m.Page.Remote() == nil {
		b.WriteString(m.Spinner.View() + " " + m.tr.T("config.waitingForNode"))
		b.WriteString("\n")
		return b.String()
	}

	values := m.Page.Form().Values()
	errs := m.Page.Form().Errors()

	b.WriteString(RenderRow(RenderCheckbox(values.Enabled)+" "+m.tr.T(labelPrefix+"remoteHardwareEnabled"), m.Cursor == rowEnabled))
	b.WriteString("\n")
	b.WriteString(RenderRow(RenderCheckbox(values.AllowUndefinedPinAccess)+" "+m.tr.T(labelPrefix+"allowUndefinedPinAccess"), m.Cursor == rowAllowUndefined))
	b.WriteString("\n")

	b.WriteString(SectionStyle.Render(m.tr.T(labelPrefix + "availablePins")))
	b.WriteString("\n")
	if msg, ok := errs["availablePins"]; ok {
		b.WriteString(FieldErrorStyle.Render(msg))
		b.WriteString("\n")
	}

	if len(values.AvailablePins) == 0 {
		b.WriteString(RowStyle.Render(RenderSubtitle(m.tr.T(labelPrefix + "noPins"))))
		b.WriteString("\n")
	}
	for i, pin := range values.AvailablePins {
		line := fmt.Sprintf("GPIO %-2d  %-14s %s: %s", pin.GpioPin, pin.Name, m.tr.T(labelPrefix+"pinType"), pin.Type)
		b.WriteString(RenderRow(line, m.Cursor == firstPinRow+i))
		b.WriteString("\n")

		prefix := fmt.Sprintf("availablePins[%d].", i)
		for _, field := range errs.Fields() {
			if strings.HasPrefix(field, prefix) {
				b.WriteString(FieldErrorStyle.Render(strings.TrimPrefix(field, prefix) + ": " + errs[field]))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

// statusLine shows whether edits are waiting, stored or in sync.
func (m RemoteHardwareModel) statusLine() string {
	var parts []string

	switch {
	case m.Page.Err() != nil:
		parts = append(parts, ErrorBoxStyle.Render(m.tr.T("config.writeFailed")+": "+m.Page.Err().Error()))
	case m.Page.PendingWrite() || m.Page.Dirty():
		parts = append(parts, PendingBadgeStyle.Render("● "+m.tr.T("config.pendingChanges")))
	default:
		parts = append(parts, SyncedBadgeStyle.Render("✓ "+m.tr.T("config.synced")))
	}

	if !m.Page.Form().Valid() {
		parts = append(parts, FieldErrorStyle.UnsetPaddingLeft().Render(m.tr.T("config.validationFailed")))
	}

	return strings.Join(parts, "  ")
}

// HelpView renders the footer help for the current key map.
func (m RemoteHardwareModel) HelpView() string {
	return m.Help.View(m.Keys)
}

// nextPinType cycles read, write, unknown.
func nextPinType(t moduleconfig.PinType) moduleconfig.PinType {
	switch t {
	case moduleconfig.PinTypeDigitalRead:
		return moduleconfig.PinTypeDigitalWrite
	case moduleconfig.PinTypeDigitalWrite:
		return moduleconfig.PinTypeUnknown
	default:
		return moduleconfig.PinTypeDigitalRead
	}
}

// nextFreeGpio returns the lowest GPIO number not yet listed.
func nextFreeGpio(pins []moduleconfig.RemoteHardwarePin) uint32 {
	used := make(map[uint32]bool, len(pins))
	for _, p := range pins {
		used[p.GpioPin] = true
	}
	var gpio uint32
	for used[gpio] {
		gpio++
	}
	return gpio
}
