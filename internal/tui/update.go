package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Davincible/shamirstore/internal/validation"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/Davincible/shamirstore/pkg/store"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor + len(menu) - 1) % len(menu)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(menu)
	case "enter":
		return m.selectAction(menu[m.cursor].action)
	}
	return m, nil
}

func (m *Model) selectAction(a action) (tea.Model, tea.Cmd) {
	if a.requiresKey() && !m.session.HasKey() {
		m.setError(msgNoStore)
		return m, nil
	}
	m.clearStatus()

	switch a {
	case actionInitStore:
		return m.initStore()
	case actionLoadStore:
		return m.startPath(stateLoadPath, true)
	case actionLoadPlain:
		return m.startPath(stateLoadPath, false)
	case actionEditStore:
		m.enterEdit()
		return m, nil
	case actionSaveStore:
		return m.startPath(stateSavePath, true)
	case actionSavePlain:
		return m.startPath(stateSavePath, false)
	}
	return m, nil
}

// defaultPath is the last used path, or the configured one, with the
// extension matching encrypted.
func (m *Model) defaultPath(encrypted bool) string {
	path := m.session.Path()
	if path == "" {
		path = m.storePath
	}
	return store.SwapExtension(path, encrypted)
}

func (m *Model) startPath(next state, encrypted bool) (tea.Model, tea.Cmd) {
	m.state = next
	m.encrypted = encrypted
	m.pathInput.SetValue(m.defaultPath(encrypted))
	m.pathInput.CursorEnd()
	return m, m.pathInput.Focus()
}

func (m *Model) initStore() (tea.Model, tea.Cmd) {
	creds, err := m.session.Init(true)
	if err != nil {
		m.setError(fmt.Sprintf("Failed to initialize store: %v", err))
		return m, nil
	}
	m.creds = &creds
	m.state = stateInitStore
	m.setMessage(msgInitialized)
	return m, nil
}

func (m *Model) updateInitStore(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "c":
		m.copyMnemonic()
	case "enter":
		m.creds = nil
		m.enterEdit()
	case "esc":
		m.toMenu(actionInitStore)
	}
	return m, nil
}

func (m *Model) copyMnemonic() {
	if m.noCopy {
		m.setError("Clipboard is disabled")
		return
	}
	if m.creds == nil {
		return
	}
	if err := m.clipboard(m.creds.Mnemonic); err != nil {
		m.setError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		return
	}
	m.setMessage("Mnemonic copied to clipboard. Clear it once written down.")
}

func (m *Model) updateLoadPath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.toMenu(actionLoadStore)
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.setError(msgEmptyPath)
				return m, nil
			}
			if m.encrypted {
				m.state = stateLoadKey
				m.pathInput.Blur()
				m.keyInput.Reset()
				m.clearStatus()
				return m, m.keyInput.Focus()
			}
			return m.load(path, "")
		}
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) updateLoadKey(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.toMenu(actionLoadStore)
			return m, nil
		case tea.KeyEnter:
			input := m.keyInput.Value()
			if err := validation.ValidateKey(input); err != nil {
				m.setError(msgBadKey)
				return m, nil
			}
			parsed, err := m.session.ParseKey(input)
			if err != nil {
				m.setError(msgBadKey)
				return m, nil
			}
			parsed.Destroy()
			return m.load(strings.TrimSpace(m.pathInput.Value()), input)
		}
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

// load reads the store and moves to the editor, or back to the menu with the
// error.
func (m *Model) load(path, keyInput string) (tea.Model, tea.Cmd) {
	if err := m.session.Load(path, keyInput); err != nil {
		a := actionLoadStore
		if !m.encrypted {
			a = actionLoadPlain
		}
		m.toMenu(a)
		m.setError(describe(err))
		return m, nil
	}

	m.keyInput.Reset()
	m.pathInput.Blur()
	m.keyInput.Blur()
	m.enterEdit()
	m.setMessage(msgLoaded)
	return m, nil
}

func (m *Model) updateSavePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.toMenu(m.saveAction())
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.setError(msgEmptyPath)
				return m, nil
			}
			if err := m.session.Save(path, m.encrypted); err != nil {
				m.setError(describe(err))
				return m, nil
			}
			m.toMenu(m.saveAction())
			if m.encrypted {
				m.setMessage(msgSaved)
			} else {
				m.setMessage(fmt.Sprintf("%s Saved WITHOUT encryption to %s", msgSaved, path))
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) saveAction() action {
	if m.encrypted {
		return actionSaveStore
	}
	return actionSavePlain
}

// describe turns an error into a status line.
func describe(err error) string {
	switch {
	case errors.Is(err, errkind.Crypto):
		return "Could not decrypt the store: wrong key or damaged file"
	case errors.Is(err, errkind.Serialization):
		return fmt.Sprintf("Store file is not valid: %v", err)
	default:
		return err.Error()
	}
}
