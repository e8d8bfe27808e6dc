package ui

import (
	"todo-go/internal/todo"
)

// Store is the client-side application state. Apply is the only way to change
// it. A Store is not safe for concurrent use; views serialize access.
type Store struct {
	todos        []todo.Todo
	modalVisible bool
	editing      *todo.Todo
	refresh      uint64

	// session identifies the modal currently open; it grows on every open.
	session uint64
	// draft holds the last submitted form values of the current session.
	draft *Submit

	// applied is the refresh counter of the most recently applied fetch.
	applied    uint64
	hasApplied bool

	clock  todo.Clock
	ids    todo.IDGenerator
	logger todo.Logger
}

// NewStore creates an empty store. Call Start to obtain the initial fetch.
func NewStore(clock todo.Clock, ids todo.IDGenerator, logger todo.Logger) *Store {
	return &Store{
		todos:  []todo.Todo{},
		clock:  clock,
		ids:    ids,
		logger: logger,
	}
}

// Start returns the fetch for the current refresh counter.
func (s *Store) Start() []Task {
	return []Task{fetchTask(s.refresh)}
}

// Todos returns the list from the most recently applied fetch.
func (s *Store) Todos() []todo.Todo {
	return append([]todo.Todo{}, s.todos...)
}

func (s *Store) ModalVisible() bool {
	return s.modalVisible
}

// Editing returns the edit target, or nil when the modal creates a new todo.
func (s *Store) Editing() *todo.Todo {
	if s.editing == nil {
		return nil
	}
	t := *s.editing
	return &t
}

// Refresh returns the refresh counter. It only grows.
func (s *Store) Refresh() uint64 {
	return s.refresh
}

// Loading reports whether no fetch for the current refresh counter has resolved yet.
func (s *Store) Loading() bool {
	return !s.hasApplied || s.applied < s.refresh
}

// Apply performs the state transition for e and returns the tasks it spawns.
func (s *Store) Apply(e Event) []Task {
	switch e := e.(type) {
	case OpenCreate:
		s.openModal(nil)
	case OpenEdit:
		t := e.Todo
		s.openModal(&t)
	case Cancel:
		s.closeModal()
	case Submit:
		return s.submit(e)
	case Delete:
		s.logger.Debug("deleting todo", "id", e.Todo.ID)
		return []Task{deleteTask(e.Todo.ID)}
	case Fetched:
		s.fetched(e)
	case Mutated:
		return s.mutated(e)
	default:
		s.logger.Warn("unknown ui event", "event", e)
	}
	return nil
}

func (s *Store) openModal(target *todo.Todo) {
	s.session++
	s.editing = target
	s.draft = nil
	s.modalVisible = true
}

func (s *Store) closeModal() {
	s.editing = nil
	s.draft = nil
	s.modalVisible = false
}

func (s *Store) submit(e Submit) []Task {
	if !s.modalVisible {
		s.logger.Debug("submit ignored, modal hidden")
		return nil
	}
	draft := e
	s.draft = &draft
	if s.editing == nil {
		t := todo.New(s.ids, s.clock, e.Title, e.Description)
		s.logger.Debug("creating todo", "id", t.ID, "session", s.session)
		return []Task{insertTask(t, s.session)}
	}
	t := *s.editing
	t.Title = e.Title
	t.Description = e.Description
	s.logger.Debug("editing todo", "id", t.ID, "session", s.session)
	return []Task{editTask(t, s.session)}
}

func (s *Store) fetched(e Fetched) {
	if s.hasApplied && e.Version < s.applied {
		s.logger.Debug("stale fetch dropped", "version", e.Version, "applied", s.applied)
		return
	}
	s.applied = e.Version
	s.hasApplied = true
	if e.Err != nil {
		s.logger.Error("fetching todos failed", "version", e.Version, "error", e.Err)
		s.todos = []todo.Todo{}
		return
	}
	s.todos = append([]todo.Todo{}, e.Todos...)
}

func (s *Store) mutated(e Mutated) []Task {
	if e.Err != nil {
		s.logger.Error("todo "+string(e.Op)+" failed", "id", e.ID, "error", e.Err)
		return nil
	}
	if e.Op == OpInsert || e.Op == OpEdit {
		if e.Session == s.session {
			s.closeModal()
		} else {
			s.logger.Debug("completion from closed modal", "op", string(e.Op), "session", e.Session, "current", s.session)
		}
	}
	s.refresh++
	return []Task{fetchTask(s.refresh)}
}
