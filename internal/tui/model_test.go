package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"todo-go/internal/testutil"
	"todo-go/internal/todo"
)

func newTestModel(repo *testutil.MemoryRepository) Model {
	return New(context.Background(), Options{
		API:    todo.NewService(repo, todo.NewNopLogger()),
		Clock:  testutil.FixedClock(),
		IDs:    testutil.NewStubIDGenerator(),
		Logger: todo.NewNopLogger(),
	})
}

// settle runs cmd and feeds task completions back into the model until no
// task work remains. Spinner ticks are dropped so the loop terminates.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case taskDoneMsg:
			updated, follow := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, follow)
		case spinner.TickMsg:
		default:
			t.Fatalf("unexpected message %T", msg)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// typeText enters text into the focused field, discarding cursor blink commands.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = press(t, m, text)
	return m
}

func started(t *testing.T, repo *testutil.MemoryRepository) Model {
	t.Helper()
	m := newTestModel(repo)
	return settle(t, m, m.Init())
}

func TestModel_InitialLoad(t *testing.T) {
	m := newTestModel(testutil.NewMemoryRepository())
	if !strings.Contains(m.View(), "Loading...") {
		t.Error("view before the first fetch should show loading")
	}

	m = settle(t, m, m.Init())
	view := m.View()
	if !strings.Contains(view, "TODO LIST") || !strings.Contains(view, "No Todos") {
		t.Errorf("view = %q, want header and empty placeholder", view)
	}
}

func TestModel_TextKeptAsTyped(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	m := started(t, repo)

	long := strings.Repeat("long description ", 100)
	m, _ = press(t, m, "n")
	m = typeText(t, m, "  padded title  ")
	m, _ = press(t, m, "tab")
	m = typeText(t, m, long)

	m, cmd := press(t, m, "enter")
	settle(t, m, cmd)

	stored := repo.Todos()
	if len(stored) != 1 {
		t.Fatalf("stored = %+v", stored)
	}
	if stored[0].Title != "  padded title  " {
		t.Errorf("stored title = %q, want it unchanged", stored[0].Title)
	}
	if stored[0].Description != long {
		t.Errorf("stored description has %d chars, want %d", len(stored[0].Description), len(long))
	}
}

func TestModel_CreateTodo(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	m := started(t, repo)

	m, _ = press(t, m, "n")
	if !strings.Contains(m.View(), "New Todo") {
		t.Fatal("create modal not shown")
	}
	m = typeText(t, m, "Buy milk")
	m, _ = press(t, m, "tab")
	m = typeText(t, m, "2 litres")

	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	stored := repo.Todos()
	if len(stored) != 1 || stored[0].Title != "Buy milk" || stored[0].Description != "2 litres" {
		t.Fatalf("stored = %+v", stored)
	}
	view := m.View()
	if strings.Contains(view, "New Todo") {
		t.Error("modal still shown after successful create")
	}
	if !strings.Contains(view, "Buy milk") {
		t.Error("new row missing from view")
	}
}

func TestModel_EditTodo(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "old", Description: "d", Created: time.UnixMilli(1).UTC()}
	repo := testutil.NewMemoryRepository(a)
	m := started(t, repo)

	m, _ = press(t, m, "e")
	if !strings.Contains(m.View(), "Edit Todo") {
		t.Fatal("edit modal not shown")
	}
	if got := m.title.Value(); got != "old" {
		t.Errorf("title input = %q, want prefilled %q", got, "old")
	}
	m = typeText(t, m, " and new")

	m, cmd := press(t, m, "enter")
	settle(t, m, cmd)

	if got := repo.Todos()[0].Title; got != "old and new" {
		t.Errorf("stored title = %q, want %q", got, "old and new")
	}
}

func TestModel_DeleteSelected(t *testing.T) {
	repo := testutil.NewMemoryRepository(
		todo.Todo{ID: "a", Title: "first", Created: time.UnixMilli(1).UTC()},
		todo.Todo{ID: "b", Title: "second", Created: time.UnixMilli(2).UTC()},
	)
	m := started(t, repo)

	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "d")
	m = settle(t, m, cmd)

	stored := repo.Todos()
	if len(stored) != 1 || stored[0].ID != "a" {
		t.Errorf("stored = %+v, want only a", stored)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestModel_CancelModal(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	m := started(t, repo)

	m, _ = press(t, m, "n")
	m = typeText(t, m, "abandoned")
	m, cmd := press(t, m, "esc")
	if cmd != nil {
		t.Error("cancel should not spawn work")
	}
	if strings.Contains(m.View(), "New Todo") {
		t.Error("modal shown after esc")
	}
	if len(repo.Todos()) != 0 {
		t.Error("cancel stored a todo")
	}

	m, _ = press(t, m, "n")
	if got := m.title.Value(); got != "" {
		t.Errorf("title input = %q after reopening, want empty", got)
	}
}

func TestModel_SubmitFailureKeepsModal(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	m := started(t, repo)
	repo.SetErr(errors.New("table gone"))

	m, _ = press(t, m, "n")
	m = typeText(t, m, "x")
	m, cmd := press(t, m, "enter")
	m = settle(t, m, cmd)

	if !strings.Contains(m.View(), "New Todo") {
		t.Error("modal closed after failed submit")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := started(t, testutil.NewMemoryRepository())

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModel_KeysIgnoredOnEmptyList(t *testing.T) {
	m := started(t, testutil.NewMemoryRepository())

	for _, k := range []string{"e", "d", "j", "k"} {
		var cmd tea.Cmd
		m, cmd = press(t, m, k)
		if cmd != nil {
			t.Errorf("%q on empty list returned a command", k)
		}
	}
	if strings.Contains(m.View(), "Edit Todo") {
		t.Error("edit modal opened with no rows")
	}
}
