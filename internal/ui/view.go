package ui

import "todo-go/internal/todo"

// Phase is the rendering state of the list panel.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseEmpty
	PhasePopulated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	case PhasePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// RowKey identifies a rendered row. A description-only edit yields a new key.
type RowKey struct {
	ID          string
	Description string
}

// Row is one rendered list entry.
type Row struct {
	Key  RowKey
	Todo todo.Todo
}

// ListView is the render model of the list panel.
type ListView struct {
	Phase Phase
	Rows  []Row
}

// ModalView is the render model of the create/edit form.
type ModalView struct {
	Visible     bool
	Editing     bool
	Title       string
	Description string
}

// View derives the list render model from the current state.
func (s *Store) View() ListView {
	if s.Loading() {
		return ListView{Phase: PhaseLoading}
	}
	if len(s.todos) == 0 {
		return ListView{Phase: PhaseEmpty}
	}
	rows := make([]Row, 0, len(s.todos))
	for _, t := range s.todos {
		rows = append(rows, Row{
			Key:  RowKey{ID: t.ID, Description: t.Description},
			Todo: t,
		})
	}
	return ListView{Phase: PhasePopulated, Rows: rows}
}

// Modal derives the form render model. The fields hold the last submitted
// values of this modal, else the edit target, else nothing.
func (s *Store) Modal() ModalView {
	m := ModalView{Visible: s.modalVisible}
	if s.editing != nil {
		m.Editing = true
		m.Title = s.editing.Title
		m.Description = s.editing.Description
	}
	if s.draft != nil {
		m.Title = s.draft.Title
		m.Description = s.draft.Description
	}
	return m
}

// Find returns the displayed todo with the given id, or nil.
func (s *Store) Find(id string) *todo.Todo {
	for _, t := range s.todos {
		if t.ID == id {
			found := t
			return &found
		}
	}
	return nil
}
