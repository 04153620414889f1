package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// SetupCmd implements the 'setup' command.
type SetupCmd struct {
	EnvFile string `help:"Env file to update" default:".env" type:"path"`
}

func (s *SetupCmd) Run(_ *Global, _ *CLI) error {
	current, err := config.ReadEnvFile(s.EnvFile)
	if err != nil {
		return errors.ConfigError("failed to read env file").WithCause(err).WithContext("path", s.EnvFile).Build()
	}
	for _, key := range []string{"NOTION_TOKEN", "NOTION_DATABASE_ID"} {
		if current[key] == "" {
			current[key] = os.Getenv(key)
		}
	}

	final, err := tea.NewProgram(newSetupModel(current)).Run()
	if err != nil {
		return errors.InternalError("setup form failed").WithCause(err).Build()
	}
	m := final.(setupModel)
	if m.canceled {
		fmt.Println("Setup canceled; nothing written.")
		return nil
	}

	if err := config.WriteEnvFile(s.EnvFile, m.values()); err != nil {
		return errors.FileSystemError("failed to write env file").WithCause(err).WithContext("path", s.EnvFile).Build()
	}
	fmt.Printf("Saved %s\n", s.EnvFile)
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type setupField struct {
	key     string
	label   string
	current string
	input   textinput.Model
}

type setupModel struct {
	fields   []setupField
	focus    int
	done     bool
	canceled bool
}

func newSetupModel(current map[string]string) setupModel {
	token := textinput.New()
	token.Placeholder = "secret_..."
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	token.Focus()

	db := textinput.New()
	db.Placeholder = "32 character database id"

	return setupModel{fields: []setupField{
		{key: "NOTION_TOKEN", label: "Notion integration token", current: current["NOTION_TOKEN"], input: token},
		{key: "NOTION_DATABASE_ID", label: "Notion database id", current: current["NOTION_DATABASE_ID"], input: db},
	}}
}

func (m setupModel) Init() tea.Cmd { return textinput.Blink }

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.focus == len(m.fields)-1 {
				m.done = true
				return m, tea.Quit
			}
			return m, m.move(1)
		case tea.KeyTab, tea.KeyDown:
			return m, m.move(1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.move(-1)
		}
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

// move shifts focus by delta, wrapping around.
func (m *setupModel) move(delta int) tea.Cmd {
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].input.Focus()
}

func (m setupModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("notionsync setup") + "\n")
	for _, f := range m.fields {
		sb.WriteString(labelStyle.Render(f.label) + " " + hintStyle.Render("(current: "+mask(f.current)+")") + "\n")
		sb.WriteString(f.input.View() + "\n\n")
	}
	sb.WriteString(hintStyle.Render("enter: next/save • tab: switch • esc: cancel • empty keeps the current value") + "\n")
	return sb.String()
}

// values returns the entered values; empty input keeps the current value.
func (m setupModel) values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		v := strings.TrimSpace(f.input.Value())
		if v == "" {
			v = f.current
		}
		out[f.key] = v
	}
	return out
}

// mask hides a secret, showing the first and last four characters of longer values.
func mask(v string) string {
	switch r := []rune(v); {
	case len(r) == 0:
		return "not set"
	case len(r) <= 8:
		return "****"
	default:
		return string(r[:4]) + "****" + string(r[len(r)-4:])
	}
}
