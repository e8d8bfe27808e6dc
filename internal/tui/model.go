package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo-go/internal/todo"
	"todo-go/internal/ui"
)

// taskDoneMsg carries a task's completion event back onto the event loop.
type taskDoneMsg struct {
	event ui.Event
}

// Options configures the terminal UI.
type Options struct {
	API    todo.API
	Clock  todo.Clock
	IDs    todo.IDGenerator
	Logger todo.Logger
}

// Model is the bubbletea model for the todo list. All ui.Store access
// happens on the bubbletea event loop.
type Model struct {
	ctx   context.Context
	api   todo.API
	store *ui.Store

	cursor      int
	title       textinput.Model
	description textinput.Model
	focus       int // 0 = title, 1 = description
	spinner     spinner.Model
	pending     int
}

// New creates the model. Tasks run with ctx.
func New(ctx context.Context, opts Options) Model {
	clock := opts.Clock
	if clock == nil {
		clock = todo.RealClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = todo.UUIDGenerator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = todo.NewNopLogger()
	}

	title := textinput.New()
	title.Prompt = "Title       > "
	title.Placeholder = "What needs doing?"

	description := textinput.New()
	description.Prompt = "Description > "
	description.Placeholder = "Details (optional)"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		ctx:         ctx,
		api:         opts.API,
		store:       ui.NewStore(clock, ids, logger),
		title:       title,
		description: description,
		spinner:     sp,
	}
}

// Init starts the spinner and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.taskCmds(m.store.Start()))
}

// taskCmds wraps each task in a command. The caller accounts for pending.
func (m Model) taskCmds(tasks []ui.Task) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		cmds = append(cmds, func() tea.Msg {
			return taskDoneMsg{event: task.Run(m.ctx, m.api)}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) spawn(tasks []ui.Task) (Model, tea.Cmd) {
	m.pending += len(tasks)
	return m, m.taskCmds(tasks)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		wasVisible := m.store.ModalVisible()
		var cmd tea.Cmd
		m, cmd = m.spawn(m.store.Apply(msg.event))
		if wasVisible && !m.store.ModalVisible() {
			m.blurInputs()
		}
		m.clampCursor()
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.store.ModalVisible() {
			return m.updateModal(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "n":
		m.store.Apply(ui.OpenCreate{})
		m.openInputs()
	case "e":
		if t, ok := m.selected(); ok {
			m.store.Apply(ui.OpenEdit{Todo: t})
			m.openInputs()
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m.spawn(m.store.Apply(ui.Delete{Todo: t}))
		}
	}
	return m, nil
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.store.Apply(ui.Cancel{})
		m.blurInputs()
		return m, nil
	case "enter":
		return m.spawn(m.store.Apply(ui.Submit{
			Title:       m.title.Value(),
			Description: m.description.Value(),
		}))
	case "tab", "shift+tab":
		m.focus = 1 - m.focus
		m.focusInputs()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

// selected returns the todo under the cursor when the list is populated.
func (m Model) selected() (todo.Todo, bool) {
	view := m.store.View()
	if view.Phase != ui.PhasePopulated || m.cursor < 0 || m.cursor >= len(view.Rows) {
		return todo.Todo{}, false
	}
	return view.Rows[m.cursor].Todo, true
}

func (m *Model) clampCursor() {
	n := len(m.store.View().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// openInputs fills the form from the modal state and focuses the title.
func (m *Model) openInputs() {
	modal := m.store.Modal()
	m.title.SetValue(modal.Title)
	m.title.CursorEnd()
	m.description.SetValue(modal.Description)
	m.description.CursorEnd()
	m.focus = 0
	m.focusInputs()
}

func (m *Model) focusInputs() {
	if m.focus == 0 {
		m.title.Focus()
		m.description.Blur()
		return
	}
	m.description.Focus()
	m.title.Blur()
}

func (m *Model) blurInputs() {
	m.title.Blur()
	m.description.Blur()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TODO LIST"))
	if m.pending > 0 {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	view := m.store.View()
	switch view.Phase {
	case ui.PhaseLoading:
		b.WriteString(m.spinner.View() + " Loading...")
	case ui.PhaseEmpty:
		b.WriteString(mutedStyle.Render("No Todos"))
	default:
		for i, row := range view.Rows {
			prefix := "  "
			line := row.Todo.Title
			if row.Todo.Description != "" {
				line += mutedStyle.Render(" - " + row.Todo.Description)
			}
			if i == m.cursor {
				prefix = selectedStyle.Render("> ")
			}
			fmt.Fprintln(&b, prefix+line)
		}
	}

	if modal := m.store.Modal(); modal.Visible {
		heading := "New Todo"
		if modal.Editing {
			heading = "Edit Todo"
		}
		form := titleStyle.Render(heading) + "\n" + m.title.View() + "\n" + m.description.View()
		b.WriteString("\n" + modalStyle.Render(form) + "\n")
		b.WriteString(helpStyle.Render("enter submit • tab switch field • esc cancel"))
	} else {
		b.WriteString("\n" + helpStyle.Render("n new • e edit • d delete • j/k move • q quit"))
	}
	return panelStyle.Render(b.String())
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
