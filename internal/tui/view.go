package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var body string
	switch m.state {
	case stateInitStore:
		body = m.viewInitStore()
	case stateLoadPath:
		body = m.viewPath("Load path")
	case stateLoadKey:
		body = m.viewLoadKey()
	case stateEdit:
		body = m.viewEdit()
	case stateEditForm:
		body = m.viewEditForm()
	case stateSavePath:
		body = m.viewSave()
	default:
		body = m.viewMenu()
	}

	parts := []string{titleStyle.Render(m.title()), "", body, ""}
	if status := m.status(); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, footerStyle.Render(m.footer()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *Model) title() string {
	switch m.state {
	case stateInitStore:
		return "Init Store"
	case stateLoadPath, stateLoadKey:
		if m.encrypted {
			return "Load Store"
		}
		return "Load Unencrypted Store"
	case stateEdit, stateEditForm:
		return "Edit Store"
	case stateSavePath:
		if m.encrypted {
			return "Save Store"
		}
		return "Save Unencrypted Store"
	}
	if m.session.HasKey() {
		return "Main Menu - 🔓 Store Loaded"
	}
	return "Main Menu"
}

func (m *Model) footer() string {
	switch m.state {
	case stateInitStore:
		if m.noCopy {
			return "[ Esc: Menu ] [ ⏎ Enter: Edit Store ]"
		}
		return "[ Esc: Menu ] [ c: Copy Mnemonic ] [ ⏎ Enter: Edit Store ]"
	case stateLoadPath, stateLoadKey, stateSavePath:
		return "[ Esc: Cancel ] [ ⏎ Enter: Confirm ]"
	case stateEdit:
		return "[ Esc: Menu ] [ ↑/↓: Navigate ] [ ⏎ Enter: Edit ] [ d: Delete ]"
	case stateEditForm:
		return "[ Esc: Cancel ] [ Tab: Next Field ] [ ⏎ Enter: Apply ]"
	}
	return "[ q: Quit ] [ ↑/↓: Navigate ] [ ⏎ Enter: Select ]"
}

func (m *Model) status() string {
	if m.err != "" {
		return errorStyle.Render("✗ " + m.err)
	}
	if m.message != "" {
		return messageStyle.Render(m.message)
	}
	return ""
}

func (m *Model) viewMenu() string {
	nameWidth := 0
	for _, item := range menu {
		if w := lipgloss.Width(item.name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	for i, item := range menu {
		line := fmt.Sprintf(" %s  %-*s  ", item.icon, nameWidth, item.name)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line + item.description))
		} else {
			b.WriteString(line + descStyle.Render(item.description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewInitStore() string {
	if m.creds == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Key (hex):\n")
	b.WriteString(keyBoxStyle.Render(m.creds.Hex))
	b.WriteString("\n\nMnemonic:\n")

	words := strings.Fields(m.creds.Mnemonic)
	var lines []string
	for i := 0; i < len(words); i += 6 {
		end := i + 6
		if end > len(words) {
			end = len(words)
		}
		var cells []string
		for j := i; j < end; j++ {
			cells = append(cells, fmt.Sprintf("%2d. %-9s", j+1, words[j]))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	b.WriteString(keyBoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(warningStyle.Render("⚠ IMPORTANT: Save this key securely! Without it the store cannot be decrypted."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("The store was seeded with example entries. Press Enter to edit it."))
	return b.String()
}

func (m *Model) viewPath(label string) string {
	return fmt.Sprintf("%s:\n%s", label, m.pathInput.View())
}

func (m *Model) viewLoadKey() string {
	return fmt.Sprintf("Path: %s\n\nKey:\n%s", m.pathInput.Value(), m.keyInput.View())
}

func (m *Model) viewSave() string {
	view := m.viewPath("Save path")
	if !m.encrypted {
		view += "\n\n" + warningStyle.Render("⚠ The store will be written WITHOUT encryption. Anyone with the file can read every secret.")
	}
	return view
}

func (m *Model) viewEdit() string {
	var b strings.Builder
	for i, r := range m.rows {
		indent, text := "", ""
		style := descStyle
		switch r.kind {
		case rowSection:
			text, style = r.section+":", sectionStyle
		case rowEntry:
			indent, text, style = "  ", fmt.Sprintf("%s: %s", r.key, r.value), lipgloss.NewStyle()
		case rowAddEntry:
			indent, text = "  ", "+ Add Entry"
		case rowAddSection:
			text = "+ Add Section"
		}
		if i == m.editIndex {
			style = selectedStyle
		}
		b.WriteString(indent + style.Render(text) + "\n")
	}
	return b.String()
}

func (m *Model) viewEditForm() string {
	f := m.form
	if f == nil {
		return ""
	}

	var b strings.Builder
	switch f.kind {
	case formEditEntry:
		fmt.Fprintf(&b, "Edit entry in %s\n\n", f.section)
	case formAddEntry:
		fmt.Fprintf(&b, "New entry in %s\n\n", f.section)
	case formAddSection:
		b.WriteString("New section\n\n")
	}
	for i, in := range f.inputs {
		fmt.Fprintf(&b, "%s:\n%s\n\n", f.labels[i], in.View())
	}
	return b.String()
}
