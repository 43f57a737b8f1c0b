package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wasm2lua/wasm2lua"
	"github.com/wasm2lua/wasm2lua/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateShowLua
	stateSavePath
)

type interactiveModel struct {
	err      error
	filename string
	dialect  wasm2lua.Dialect
	module   *wasm.Module
	funcs    []funcInfo
	selected int
	lua      string
	saveTo   textinput.Model
	saved    string
	state    modelState
}

func newInteractiveModel(filename string, dialect wasm2lua.Dialect) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "out.lua"
	ti.Prompt = "save to: "
	ti.Width = 40
	return &interactiveModel{
		filename: filename,
		dialect:  dialect,
		saveTo:   ti,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err    error
	module *wasm.Module
	funcs  []funcInfo
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	module, err := wasm.ParseModule(data)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{module: module, funcs: describeExports(module)}
}

func (m *interactiveModel) translateSelected() string {
	f := m.funcs[m.selected]

	var buf bytes.Buffer
	if err := wasm2lua.Translate(m.module, &buf, wasm2lua.Config{Dialect: m.dialect}); err != nil {
		return errorStyle.Render(fmt.Sprintf("translate: %v", err))
	}

	body := extractFunc(buf.String(), f.index)
	if body == "" {
		return buf.String()
	}
	return body
}

// extractFunc pulls the single "FUNC_LIST[idx] = function ... end" entry out
// of a complete module translation, for a focused per-function preview.
func extractFunc(source string, idx uint32) string {
	marker := fmt.Sprintf("FUNC_LIST[%d] = function", idx)
	start := strings.Index(source, marker)
	if start < 0 {
		return ""
	}
	end := strings.Index(source[start:], "\nend\n")
	if end < 0 {
		return source[start:]
	}
	return source[start : start+end+len("\nend")]
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateSavePath {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					break
				}
				m.lua = m.translateSelected()
				m.state = stateShowLua
			case stateShowLua:
				m.state = stateSelectFunc
			case stateSavePath:
				path := m.saveTo.Value()
				if path == "" {
					path = m.saveTo.Placeholder
				}
				if err := os.WriteFile(path, []byte(m.lua), 0o644); err != nil {
					m.err = err
				} else {
					m.saved = path
					m.err = nil
				}
				m.state = stateShowLua
			}

		case "s":
			if m.state == stateShowLua {
				m.state = stateSavePath
				m.saveTo.Focus()
			}

		case "esc":
			switch m.state {
			case stateShowLua:
				m.state = stateSelectFunc
			case stateSavePath:
				m.state = stateShowLua
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.module = msg.module
		m.funcs = msg.funcs
	}

	if m.state == stateSavePath {
		var cmd tea.Cmd
		m.saveTo, cmd = m.saveTo.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowLua {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.module == nil {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasm2lua"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("No exported functions.\n")
			break
		}
		b.WriteString("Select a function to translate:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			line := cursor + funcStyle.Render(f.name) + typeStyle.Render(paramsOnly(f))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + funcStyle.Render(f.name) + typeStyle.Render(paramsOnly(f))))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter translate • q quit"))

	case stateShowLua:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Lua for %s:\n\n", funcStyle.Render(f.name)))
		b.WriteString(codeStyle.Render(m.lua))
		b.WriteString("\n\n")
		if m.saved != "" {
			b.WriteString(fmt.Sprintf("saved to %s\n", m.saved))
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v\n", m.err)))
		}
		b.WriteString(helpStyle.Render("s save • enter back • q quit"))

	case stateSavePath:
		b.WriteString(m.saveTo.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter confirm • esc cancel"))
	}

	return b.String()
}

func paramsOnly(f funcInfo) string {
	if len(f.params) == 0 {
		return "()"
	}
	parts := make([]string, len(f.params))
	for i, p := range f.params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func runInteractive(filename string, dialect wasm2lua.Dialect) error {
	p := tea.NewProgram(newInteractiveModel(filename, dialect), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
