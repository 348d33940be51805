package tui

import (
	"path/filepath"
	"testing"

	"github.com/Davincible/shamirstore/internal/session"
	"github.com/Davincible/shamirstore/pkg/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	up       = tea.KeyMsg{Type: tea.KeyUp}
	down     = tea.KeyMsg{Type: tea.KeyDown}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) write(text string) error {
	c.text = text
	return nil
}

func newModel(t *testing.T, storePath string) (*Model, *fakeClipboard) {
	t.Helper()
	cb := &fakeClipboard{}
	m := New(Options{
		Session:   session.New(session.Options{}),
		StorePath: storePath,
		Clipboard: cb.write,
	})
	return m, cb
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

// selectItem moves the cursor to a and presses enter.
func selectItem(m *Model, a action) {
	m.cursor = int(a)
	send(m, enter)
}

// initModel returns a model with a freshly initialized store, in the editor.
func initModel(t *testing.T, storePath string) (*Model, *fakeClipboard) {
	t.Helper()
	m, cb := newModel(t, storePath)
	selectItem(m, actionInitStore)
	require.Equal(t, stateInitStore, m.state)
	send(m, enter)
	require.Equal(t, stateEdit, m.state)
	return m, cb
}

func rowIndex(t *testing.T, m *Model, kind rowKind, section, key string) int {
	t.Helper()
	for i, r := range m.rows {
		if r.kind == kind && r.section == section && r.key == key {
			return i
		}
	}
	t.Fatalf("row %d %s/%s not found", kind, section, key)
	return -1
}

func TestMenuNavigation(t *testing.T) {
	m, _ := newModel(t, "")
	assert.Equal(t, int(actionLoadStore), m.cursor)

	send(m, up)
	assert.Equal(t, int(actionInitStore), m.cursor)
	send(m, up)
	assert.Equal(t, len(menu)-1, m.cursor)
	send(m, down)
	assert.Equal(t, 0, m.cursor)
	send(m, runes("j"), runes("j"))
	assert.Equal(t, 2, m.cursor)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestActionsRequireKey(t *testing.T) {
	for _, a := range []action{actionLoadPlain, actionEditStore, actionSaveStore, actionSavePlain} {
		m, _ := newModel(t, "")
		selectItem(m, a)
		assert.Equal(t, stateMenu, m.state)
		assert.Equal(t, msgNoStore, m.err)
	}

	m, _ := newModel(t, "")
	selectItem(m, actionLoadStore)
	assert.Equal(t, stateLoadPath, m.state)
	assert.Empty(t, m.err)
}

func TestInitStore(t *testing.T) {
	m, cb := newModel(t, "")
	selectItem(m, actionInitStore)

	require.Equal(t, stateInitStore, m.state)
	require.NotNil(t, m.creds)
	assert.Equal(t, msgInitialized, m.message)
	assert.Contains(t, m.View(), m.creds.Hex)

	send(m, runes("c"))
	assert.Equal(t, m.creds.Mnemonic, cb.text)
	assert.Empty(t, m.err)

	send(m, enter)
	assert.Equal(t, stateEdit, m.state)
	assert.Nil(t, m.creds)
	assert.True(t, store.Example().Equal(m.session.Store()))
	assert.Contains(t, m.View(), "Nom test: Secret key")

	send(m, esc)
	assert.Equal(t, stateMenu, m.state)
	assert.Equal(t, int(actionEditStore), m.cursor)
	assert.Contains(t, m.View(), "Store Loaded")
}

func TestClipboardDisabled(t *testing.T) {
	cb := &fakeClipboard{}
	m := New(Options{
		Session:          session.New(session.Options{}),
		DisableClipboard: true,
		Clipboard:        cb.write,
	})
	selectItem(m, actionInitStore)

	send(m, runes("c"))
	assert.Equal(t, "Clipboard is disabled", m.err)
	assert.Empty(t, cb.text)
	assert.NotContains(t, m.View(), "Copy Mnemonic")

	send(m, esc)
	assert.Equal(t, stateMenu, m.state)
	assert.Equal(t, int(actionInitStore), m.cursor)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.enc")

	m, _ := initModel(t, path)
	require.NoError(t, m.session.Store().Set("db", "password", "hunter2"))
	hexKey, err := m.session.Key().Hex()
	require.NoError(t, err)
	send(m, esc)

	selectItem(m, actionSaveStore)
	require.Equal(t, stateSavePath, m.state)
	assert.Equal(t, path, m.pathInput.Value())
	send(m, enter)
	assert.Equal(t, stateMenu, m.state)
	assert.Equal(t, msgSaved, m.message)

	fresh, _ := newModel(t, path)
	selectItem(fresh, actionLoadStore)
	require.Equal(t, stateLoadPath, fresh.state)
	assert.Equal(t, path, fresh.pathInput.Value())
	send(fresh, enter)
	require.Equal(t, stateLoadKey, fresh.state)

	fresh.keyInput.SetValue("not a key")
	send(fresh, enter)
	assert.Equal(t, stateLoadKey, fresh.state)
	assert.Equal(t, msgBadKey, fresh.err)

	fresh.keyInput.SetValue(hexKey)
	send(fresh, enter)
	require.Equal(t, stateEdit, fresh.state)
	assert.Equal(t, msgLoaded, fresh.message)
	assert.True(t, m.session.Store().Equal(fresh.session.Store()))
	assert.Empty(t, fresh.keyInput.Value())
}

func TestLoadWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	m, _ := initModel(t, path)
	require.NoError(t, m.session.Save(path, true))

	other, _ := initModel(t, path)
	otherHex, err := other.session.Key().Hex()
	require.NoError(t, err)

	fresh, _ := newModel(t, path)
	selectItem(fresh, actionLoadStore)
	send(fresh, enter)
	fresh.keyInput.SetValue(otherHex)
	send(fresh, enter)

	assert.Equal(t, stateMenu, fresh.state)
	assert.Equal(t, int(actionLoadStore), fresh.cursor)
	assert.Contains(t, fresh.err, "wrong key")
	assert.False(t, fresh.session.HasKey())
	assert.Nil(t, fresh.session.Store())
}

func TestLoadMissingFile(t *testing.T) {
	m, _ := newModel(t, filepath.Join(t.TempDir(), "missing.enc"))
	selectItem(m, actionLoadStore)
	send(m, enter)
	m.keyInput.SetValue(unrelatedKey(t))
	send(m, enter)

	assert.Equal(t, stateMenu, m.state)
	assert.NotEmpty(t, m.err)
}

// unrelatedKey returns a valid key no store was sealed with.
func unrelatedKey(t *testing.T) string {
	t.Helper()
	s := session.New(session.Options{})
	creds, err := s.Init(false)
	require.NoError(t, err)
	return creds.Mnemonic
}

func TestPlaintextSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	m, _ := initModel(t, filepath.Join(dir, "vault.enc"))
	send(m, esc)

	selectItem(m, actionSavePlain)
	require.Equal(t, stateSavePath, m.state)
	assert.Equal(t, filepath.Join(dir, "vault.yaml"), m.pathInput.Value())
	assert.Contains(t, m.View(), "WITHOUT encryption")
	send(m, enter)
	assert.Equal(t, stateMenu, m.state)
	assert.Contains(t, m.message, "Saved WITHOUT encryption")

	loaded, err := store.LoadFile(filepath.Join(dir, "vault.yaml"), nil)
	require.NoError(t, err)
	assert.True(t, store.Example().Equal(loaded))

	// Loading plain data keeps the current key.
	require.NoError(t, loaded.Set("extra", "k", "v"))
	require.NoError(t, store.SaveFile(filepath.Join(dir, "vault.yaml"), nil, loaded))
	keyBefore, err := m.session.Key().Hex()
	require.NoError(t, err)

	selectItem(m, actionLoadPlain)
	require.Equal(t, stateLoadPath, m.state)
	send(m, enter)
	require.Equal(t, stateEdit, m.state)
	assert.True(t, loaded.Equal(m.session.Store()))
	keyAfter, err := m.session.Key().Hex()
	require.NoError(t, err)
	assert.Equal(t, keyBefore, keyAfter)
}

func TestEmptyPath(t *testing.T) {
	m, _ := initModel(t, "")
	send(m, esc)

	selectItem(m, actionSaveStore)
	m.pathInput.SetValue("   ")
	send(m, enter)
	assert.Equal(t, stateSavePath, m.state)
	assert.Equal(t, msgEmptyPath, m.err)

	send(m, esc)
	assert.Equal(t, stateMenu, m.state)
	assert.Equal(t, int(actionSaveStore), m.cursor)

	selectItem(m, actionLoadStore)
	m.pathInput.SetValue("")
	send(m, enter)
	assert.Equal(t, stateLoadPath, m.state)
	assert.Equal(t, msgEmptyPath, m.err)
}

func TestEditAddSection(t *testing.T) {
	m, _ := initModel(t, "")
	st := m.session.Store()

	m.editIndex = len(m.rows) - 1
	send(m, enter)
	require.Equal(t, stateEditForm, m.state)
	require.Equal(t, formAddSection, m.form.kind)

	m.form.inputs[0].SetValue("servers")
	send(m, enter)
	assert.Equal(t, stateEdit, m.state)
	assert.True(t, st.HasSection("servers"))
	rowIndex(t, m, rowSection, "servers", "")

	// Duplicate and empty names keep the form open.
	m.editIndex = len(m.rows) - 1
	send(m, enter)
	m.form.inputs[0].SetValue("servers")
	send(m, enter)
	assert.Equal(t, stateEditForm, m.state)
	assert.Contains(t, m.err, "already exists")

	m.form.inputs[0].SetValue(" ")
	send(m, enter)
	assert.Equal(t, stateEditForm, m.state)
	assert.Contains(t, m.err, "cannot be empty")

	send(m, esc)
	assert.Equal(t, stateEdit, m.state)
}

func TestEditEntries(t *testing.T) {
	m, _ := initModel(t, "")
	st := m.session.Store()

	m.editIndex = rowIndex(t, m, rowAddEntry, "example_section", "")
	send(m, enter)
	require.Equal(t, formAddEntry, m.form.kind)
	m.form.inputs[0].SetValue("token")
	m.form.inputs[1].SetValue("abc def")
	send(m, enter)
	require.Equal(t, stateEdit, m.state)
	value, ok := st.Get("example_section", "token")
	require.True(t, ok)
	assert.Equal(t, "abc def", value)

	// Adding an existing key is refused.
	m.editIndex = rowIndex(t, m, rowAddEntry, "example_section", "")
	send(m, enter)
	m.form.inputs[0].SetValue("key")
	m.form.inputs[1].SetValue("other")
	send(m, enter)
	assert.Equal(t, stateEditForm, m.state)
	assert.Contains(t, m.err, "already exists")
	send(m, esc)

	// Edit renames the entry in its old position.
	m.editIndex = rowIndex(t, m, rowEntry, "example_section", "key")
	send(m, enter)
	require.Equal(t, formEditEntry, m.form.kind)
	assert.Equal(t, "value", m.form.inputs[1].Value())

	send(m, tab)
	assert.Equal(t, 1, m.form.focus)
	send(m, shiftTab)
	assert.Equal(t, 0, m.form.focus)

	m.form.inputs[0].SetValue("renamed")
	m.form.inputs[1].SetValue("new value")
	send(m, enter)
	require.Equal(t, stateEdit, m.state)
	_, ok = st.Get("example_section", "key")
	assert.False(t, ok)
	value, _ = st.Get("example_section", "renamed")
	assert.Equal(t, "new value", value)
	assert.Equal(t, []string{"renamed", "token"}, st.Keys("example_section"))

	// Clearing the key is rejected and leaves the entry alone.
	m.editIndex = rowIndex(t, m, rowEntry, "example_section", "renamed")
	send(m, enter)
	m.form.inputs[0].SetValue("")
	send(m, enter)
	assert.Equal(t, stateEditForm, m.state)
	assert.Contains(t, m.err, "key cannot be empty")
	send(m, esc)
	_, ok = st.Get("example_section", "renamed")
	assert.True(t, ok)

	m.editIndex = rowIndex(t, m, rowEntry, "section2", "entry_name")
	send(m, runes("d"))
	_, ok = st.Get("section2", "entry_name")
	assert.False(t, ok)

	m.editIndex = rowIndex(t, m, rowSection, "section2", "")
	send(m, runes("d"))
	assert.False(t, st.HasSection("section2"))
	assert.Less(t, m.editIndex, len(m.rows))

	// The add rows cannot be deleted.
	before := len(m.rows)
	m.editIndex = len(m.rows) - 1
	send(m, runes("d"))
	assert.Len(t, m.rows, before)
}

func TestEditNavigationBounds(t *testing.T) {
	m, _ := initModel(t, "")

	send(m, up, up)
	assert.Equal(t, 0, m.editIndex)
	for range m.rows {
		send(m, down)
	}
	assert.Equal(t, len(m.rows)-1, m.editIndex)
	assert.Equal(t, rowAddSection, m.rows[m.editIndex].kind)

	send(m, runes("q"))
	assert.Equal(t, stateMenu, m.state)
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := initModel(t, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "path cannot be empty", describe(session.ErrNoPath))
	assert.Contains(t, describe(store.ErrMalformed), "Store file is not valid")
}
