// Package tui is the interactive store editor. Every screen is one state of
// Model with its own transition function; all store and key handling goes
// through the session.
package tui

import (
	"github.com/Davincible/shamirstore/internal/session"
	"github.com/Davincible/shamirstore/pkg/store"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateMenu state = iota
	stateInitStore
	stateLoadPath
	stateLoadKey
	stateEdit
	stateEditForm
	stateSavePath
)

type action int

const (
	actionInitStore action = iota
	actionLoadStore
	actionLoadPlain
	actionEditStore
	actionSaveStore
	actionSavePlain
)

type menuItem struct {
	action      action
	icon        string
	name        string
	description string
}

var menu = []menuItem{
	{actionInitStore, "🔑", "Init Store", "Generate new 256-bit key and create a store"},
	{actionLoadStore, "📂", "Load Store", "Load existing store from file"},
	{actionLoadPlain, "📄", "Load Store Data From Unencrypted File", "Load current store data from unencrypted file"},
	{actionEditStore, "✏️", "Edit Store", "View and modify store contents"},
	{actionSaveStore, "💾", "Save Store", "Save store to file"},
	{actionSavePlain, "⚠️", "Save Unencrypted Store", "Save store to file without encryption (NOT RECOMMENDED!)"},
}

// requiresKey reports whether the action needs an initialized or loaded store.
func (a action) requiresKey() bool {
	switch a {
	case actionLoadPlain, actionEditStore, actionSaveStore, actionSavePlain:
		return true
	}
	return false
}

const (
	msgNoStore     = "No store loaded. Please load or init a store first."
	msgBadKey      = "Invalid key format. Use hex (64 chars) or a 24-word mnemonic"
	msgEmptyPath   = "Path cannot be empty"
	msgInitialized = "Store initialized successfully!"
	msgLoaded      = "Store loaded successfully!"
	msgSaved       = "Store saved successfully!"
)

type Options struct {
	Session *session.Session
	// StorePath is the default encrypted store path. The unencrypted flows
	// offer the same path with a .yaml extension.
	StorePath        string
	DisableClipboard bool
	// Clipboard writes text to the system clipboard. Nil uses the OS
	// clipboard.
	Clipboard func(string) error
}

type Model struct {
	session   *session.Session
	clipboard func(string) error
	noCopy    bool

	state     state
	cursor    int
	storePath string
	encrypted bool

	pathInput textinput.Model
	keyInput  textinput.Model

	creds *session.Credentials

	rows      []row
	editIndex int
	form      *editForm

	message string
	err     string
	width   int
}

func New(opts Options) *Model {
	if opts.Session == nil {
		opts.Session = session.New(session.Options{})
	}
	noCopy := opts.DisableClipboard
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
		noCopy = noCopy || clipboard.Unsupported
	}
	if opts.StorePath == "" {
		opts.StorePath = "store" + store.EncryptedExt
	}

	path := textinput.New()
	path.Placeholder = opts.StorePath
	path.CharLimit = 4096
	path.Width = 60

	key := textinput.New()
	key.Placeholder = "64 hex characters or 24 words"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 1024
	key.Width = 60

	return &Model{
		session:   opts.Session,
		clipboard: opts.Clipboard,
		noCopy:    noCopy,
		state:     stateMenu,
		cursor:    int(actionLoadStore),
		storePath: opts.StorePath,
		pathInput: path,
		keyInput:  key,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update dispatches to the transition function of the current state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	switch m.state {
	case stateInitStore:
		return m.updateInitStore(msg)
	case stateLoadPath:
		return m.updateLoadPath(msg)
	case stateLoadKey:
		return m.updateLoadKey(msg)
	case stateEdit:
		return m.updateEdit(msg)
	case stateEditForm:
		return m.updateEditForm(msg)
	case stateSavePath:
		return m.updateSavePath(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m *Model) setMessage(text string) {
	m.message = text
	m.err = ""
}

func (m *Model) setError(text string) {
	m.err = text
	m.message = ""
}

func (m *Model) clearStatus() {
	m.message = ""
	m.err = ""
}

// toMenu returns to the menu with the cursor on a.
func (m *Model) toMenu(a action) {
	m.state = stateMenu
	m.cursor = int(a)
	m.creds = nil
	m.form = nil
	m.pathInput.Blur()
	m.keyInput.Blur()
	m.keyInput.Reset()
}
