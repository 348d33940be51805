package tui

import (
	"fmt"

	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type rowKind int

const (
	rowSection rowKind = iota
	rowEntry
	rowAddEntry
	rowAddSection
)

// row is one line of the editor list.
type row struct {
	kind    rowKind
	section string
	key     string
	value   string
}

type formKind int

const (
	formEditEntry formKind = iota
	formAddEntry
	formAddSection
)

type editForm struct {
	kind    formKind
	section string
	origKey string
	inputs  []textinput.Model
	labels  []string
	focus   int
}

func newInput(value string, limit int) textinput.Model {
	in := textinput.New()
	in.SetValue(value)
	in.CharLimit = limit
	in.Width = 50
	return in
}

func (m *Model) enterEdit() {
	m.state = stateEdit
	m.form = nil
	m.rebuildRows()
}

// rebuildRows flattens the store into the editor list, keeping the cursor in
// range.
func (m *Model) rebuildRows() {
	st := m.session.Store()
	m.rows = m.rows[:0]
	if st != nil {
		for _, name := range st.Sections() {
			m.rows = append(m.rows, row{kind: rowSection, section: name})
			entries, _ := st.Entries(name)
			for _, e := range entries {
				m.rows = append(m.rows, row{kind: rowEntry, section: name, key: e.Key, value: e.Value})
			}
			m.rows = append(m.rows, row{kind: rowAddEntry, section: name})
		}
	}
	m.rows = append(m.rows, row{kind: rowAddSection})

	if m.editIndex >= len(m.rows) {
		m.editIndex = len(m.rows) - 1
	}
	if m.editIndex < 0 {
		m.editIndex = 0
	}
}

func (m *Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "q":
		m.toMenu(actionEditStore)
	case "up", "k":
		if m.editIndex > 0 {
			m.editIndex--
		}
	case "down", "j":
		if m.editIndex < len(m.rows)-1 {
			m.editIndex++
		}
	case "enter":
		return m, m.openForm(m.rows[m.editIndex])
	case "d", "delete":
		m.deleteRow(m.rows[m.editIndex])
	}
	return m, nil
}

func (m *Model) openForm(r row) tea.Cmd {
	var f *editForm
	switch r.kind {
	case rowEntry:
		f = &editForm{
			kind:    formEditEntry,
			section: r.section,
			origKey: r.key,
			labels:  []string{"Key", "Value"},
			inputs:  []textinput.Model{newInput(r.key, 256), newInput(r.value, 0)},
		}
	case rowAddEntry:
		f = &editForm{
			kind:    formAddEntry,
			section: r.section,
			labels:  []string{"Key", "Value"},
			inputs:  []textinput.Model{newInput("", 256), newInput("", 0)},
		}
	case rowAddSection:
		f = &editForm{
			kind:   formAddSection,
			labels: []string{"Section"},
			inputs: []textinput.Model{newInput("", 256)},
		}
	default:
		return nil
	}

	m.form = f
	m.state = stateEditForm
	m.clearStatus()
	return f.inputs[0].Focus()
}

func (m *Model) deleteRow(r row) {
	st := m.session.Store()
	switch r.kind {
	case rowEntry:
		st.RemoveEntry(r.section, r.key)
		m.setMessage(fmt.Sprintf("Removed %s/%s", r.section, r.key))
	case rowSection:
		st.RemoveSection(r.section)
		m.setMessage(fmt.Sprintf("Removed section %s", r.section))
	default:
		return
	}
	m.rebuildRows()
}

func (m *Model) updateEditForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.form
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.enterEdit()
			return m, nil
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			step := 1
			if key.Type == tea.KeyShiftTab || key.Type == tea.KeyUp {
				step = len(f.inputs) - 1
			}
			f.inputs[f.focus].Blur()
			f.focus = (f.focus + step) % len(f.inputs)
			return m, f.inputs[f.focus].Focus()
		case tea.KeyEnter:
			if err := m.submitForm(); err != nil {
				m.setError(err.Error())
				return m, nil
			}
			m.enterEdit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

// submitForm applies the form to the store. The form stays open on error.
func (m *Model) submitForm() error {
	f := m.form
	st := m.session.Store()

	switch f.kind {
	case formAddSection:
		name := f.inputs[0].Value()
		if err := validation.ValidateName("section", name); err != nil {
			return err
		}
		if st.HasSection(name) {
			return fmt.Errorf("section %q already exists", name)
		}
		if err := st.AddSection(name); err != nil {
			return err
		}
		m.setMessage(fmt.Sprintf("Added section %s", name))
		return nil

	default:
		key, value := f.inputs[0].Value(), f.inputs[1].Value()
		if err := validation.ValidateName("key", key); err != nil {
			return err
		}
		if err := validation.ValidateValue(value); err != nil {
			return err
		}

		renamed := f.kind == formEditEntry && key != f.origKey
		isNew := f.kind == formAddEntry || renamed
		if _, exists := st.Get(f.section, key); exists && isNew {
			return fmt.Errorf("key %q already exists in %s", key, f.section)
		}
		if f.kind == formEditEntry {
			if err := st.Rename(f.section, f.origKey, key, value); err != nil {
				return err
			}
		} else if err := st.Set(f.section, key, value); err != nil {
			return err
		}
		m.setMessage(fmt.Sprintf("Saved %s/%s (not yet written to disk)", f.section, key))
		return nil
	}
}
