package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"coursecast/internal/canvas"
)

// pickerKeys defines the course picker keybindings.
type pickerKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultPickerKeys() pickerKeys {
	return pickerKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "abort")),
	}
}

// pickerModel is the bubbletea model for multi-selecting target courses.
type pickerModel struct {
	courses  []canvas.Course
	selected map[int]bool
	cursor   int
	keys     pickerKeys
	styles   Styles
	done     bool
	aborted  bool
}

func newPickerModel(courses []canvas.Course) pickerModel {
	return pickerModel{
		courses:  courses,
		selected: make(map[int]bool),
		keys:     defaultPickerKeys(),
		styles:   DefaultStyles(),
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.courses)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, m.keys.All):
		for i := range m.courses {
			m.selected[i] = true
		}
	case key.Matches(keyMsg, m.keys.None):
		m.selected = make(map[int]bool)
	case key.Matches(keyMsg, m.keys.Confirm):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Select target courses"))
	b.WriteString("\n")

	for i, c := range m.courses {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Info.Render("> ")
		}
		box := "[ ]"
		if m.selected[i] {
			box = m.styles.Success.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s (%s)", cursor, box, c.Name, c.CourseCode)
		if i == m.cursor {
			line = m.styles.Body.Bold(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("space toggle · a all · n none · enter confirm · q abort"))
	b.WriteString("\n")
	return b.String()
}

// picks extracts the selection in catalog order, so "select all" yields
// exactly the catalog.
func (m pickerModel) picks() []canvas.Course {
	var out []canvas.Course
	for i, c := range m.courses {
		if m.selected[i] {
			out = append(out, c)
		}
	}
	return out
}

// PickCourses runs the interactive multi-select over the catalog and
// returns the chosen courses in catalog order. An aborted picker returns an
// empty selection and no error; the caller re-prompts.
func PickCourses(courses []canvas.Course) ([]canvas.Course, error) {
	if len(courses) == 0 {
		return nil, fmt.Errorf("no courses to pick from")
	}

	final, err := tea.NewProgram(newPickerModel(courses)).Run()
	if err != nil {
		return nil, fmt.Errorf("course picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.aborted {
		return nil, nil
	}
	return m.picks(), nil
}
