package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo-go/internal/repository"
	"todo-go/internal/testutil"
	"todo-go/internal/todo"
)

func newTestStore() *Store {
	return NewStore(testutil.FixedClock(), testutil.NewStubIDGenerator(), todo.NewNopLogger())
}

func newServiceAPI(repo todo.Repository) todo.API {
	return todo.NewService(repo, todo.NewNopLogger())
}

// runTasks runs each task once and returns the completion events without applying them.
func runTasks(t *testing.T, api todo.API, tasks []Task) []Event {
	t.Helper()
	events := make([]Event, 0, len(tasks))
	for _, task := range tasks {
		events = append(events, task.Run(context.Background(), api))
	}
	return events
}

func TestStore_InitialStateIsLoading(t *testing.T) {
	s := newTestStore()

	if got := s.View().Phase; got != PhaseLoading {
		t.Errorf("Phase = %v, want loading", got)
	}
	if s.ModalVisible() {
		t.Error("ModalVisible() = true, want false")
	}
	if s.Refresh() != 0 {
		t.Errorf("Refresh() = %d, want 0", s.Refresh())
	}
	tasks := s.Start()
	if len(tasks) != 1 || tasks[0].Name != "fetch" {
		t.Fatalf("Start() = %v, want one fetch task", tasks)
	}
}

func TestStore_EmptyStateNotLoading(t *testing.T) {
	s := newTestStore()
	api := newServiceAPI(testutil.NewMemoryRepository())

	Drain(context.Background(), s, api, s.Start())

	if got := s.View().Phase; got != PhaseEmpty {
		t.Errorf("Phase = %v, want empty", got)
	}
}

func TestStore_EmptyStateWithRealRepository(t *testing.T) {
	repo := repository.NewTodoRepository(testutil.NewTestConnector(t), testutil.TestTable, todo.NewNopLogger())
	s := newTestStore()

	Drain(context.Background(), s, newServiceAPI(repo), s.Start())

	if got := s.View().Phase; got != PhaseEmpty {
		t.Errorf("Phase = %v, want empty", got)
	}
}

func TestStore_CreateFlow(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	s.Apply(OpenCreate{})
	if !s.ModalVisible() || s.Editing() != nil {
		t.Fatalf("after OpenCreate: visible=%v editing=%v", s.ModalVisible(), s.Editing())
	}

	tasks := s.Apply(Submit{Title: "Buy milk", Description: "2 litres"})
	if len(tasks) != 1 || tasks[0].Name != "insert" {
		t.Fatalf("Submit() tasks = %v, want one insert", tasks)
	}
	if !s.ModalVisible() {
		t.Error("modal hidden before the insert completed")
	}

	Drain(ctx, s, api, tasks)

	if s.ModalVisible() {
		t.Error("modal still visible after successful insert")
	}
	if s.Refresh() != 1 {
		t.Errorf("Refresh() = %d, want 1", s.Refresh())
	}
	view := s.View()
	if view.Phase != PhasePopulated || len(view.Rows) != 1 {
		t.Fatalf("View() = %+v, want one populated row", view)
	}
	row := view.Rows[0]
	if row.Todo.ID != "todo-1" || row.Todo.Title != "Buy milk" {
		t.Errorf("row = %+v", row.Todo)
	}
	wantCreated := time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)
	if !row.Todo.Created.Equal(wantCreated) {
		t.Errorf("Created = %v, want %v", row.Todo.Created, wantCreated)
	}
	if row.Key != (RowKey{ID: "todo-1", Description: "2 litres"}) {
		t.Errorf("Key = %+v", row.Key)
	}
}

func TestStore_EditFlow(t *testing.T) {
	original := todo.Todo{ID: "a", Title: "old", Description: "old desc", Created: time.UnixMilli(1000).UTC()}
	repo := testutil.NewMemoryRepository(original)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	s.Apply(OpenEdit{Todo: original})
	modal := s.Modal()
	if !modal.Visible || !modal.Editing || modal.Title != "old" || modal.Description != "old desc" {
		t.Fatalf("Modal() = %+v, want edit form prefilled", modal)
	}

	before := s.View().Rows[0].Key
	tasks := s.Apply(Submit{Title: "new", Description: "new desc"})
	if len(tasks) != 1 || tasks[0].Name != "edit" {
		t.Fatalf("Submit() tasks = %v, want one edit", tasks)
	}
	Drain(ctx, s, api, tasks)

	if s.ModalVisible() || s.Editing() != nil {
		t.Error("modal state not reset after successful edit")
	}
	stored := repo.Todos()
	if len(stored) != 1 || stored[0].Title != "new" || !stored[0].Created.Equal(original.Created) {
		t.Errorf("stored = %+v", stored)
	}
	after := s.View().Rows[0].Key
	if before == after {
		t.Errorf("row key unchanged after description edit: %+v", after)
	}
}

func TestStore_CancelDiscardsEdit(t *testing.T) {
	s := newTestStore()
	s.Apply(OpenEdit{Todo: todo.Todo{ID: "a"}})
	s.Apply(Cancel{})

	if s.ModalVisible() || s.Editing() != nil {
		t.Errorf("after Cancel: visible=%v editing=%v", s.ModalVisible(), s.Editing())
	}

	s.Apply(OpenCreate{})
	if s.Editing() != nil {
		t.Error("OpenCreate kept a previous edit target")
	}
}

func TestStore_SubmitIgnoredWhenModalHidden(t *testing.T) {
	s := newTestStore()
	if tasks := s.Apply(Submit{Title: "x"}); len(tasks) != 0 {
		t.Errorf("Submit() with hidden modal = %v, want no tasks", tasks)
	}
}

func TestStore_SubmitFailureKeepsModalOpen(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	api := newServiceAPI(repo)
	logger := testutil.NewRecordingLogger()
	s := NewStore(testutil.FixedClock(), testutil.NewStubIDGenerator(), logger)
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	repo.SetErr(errors.New("table gone"))
	s.Apply(OpenCreate{})
	Drain(ctx, s, api, s.Apply(Submit{Title: "x"}))

	if !s.ModalVisible() {
		t.Error("modal closed after failed insert")
	}
	if s.Refresh() != 0 {
		t.Errorf("Refresh() = %d, want 0 after failure", s.Refresh())
	}
	if logger.Count("ERROR") != 1 {
		t.Errorf("logged %d errors, want 1: %v", logger.Count("ERROR"), logger.Lines())
	}
}

func TestStore_DeleteFailureKeepsList(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "t", Created: time.UnixMilli(1).UTC()}
	repo := testutil.NewMemoryRepository(a)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	repo.SetErr(errors.New("throttled"))
	Drain(ctx, s, api, s.Apply(Delete{Todo: a}))

	if view := s.View(); view.Phase != PhasePopulated || len(view.Rows) != 1 {
		t.Errorf("View() = %+v, want list unchanged", view)
	}
	if s.Refresh() != 0 {
		t.Errorf("Refresh() = %d, want 0", s.Refresh())
	}
}

func TestStore_DeleteTwiceBothSucceed(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "t", Created: time.UnixMilli(1).UTC()}
	repo := testutil.NewMemoryRepository(a)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	first := s.Apply(Delete{Todo: a})
	second := s.Apply(Delete{Todo: a})
	Drain(ctx, s, api, append(first, second...))

	if s.Refresh() != 2 {
		t.Errorf("Refresh() = %d, want 2", s.Refresh())
	}
	if got := s.View().Phase; got != PhaseEmpty {
		t.Errorf("Phase = %v, want empty", got)
	}
}

func TestStore_TwoRapidCreatesPersistTwoRows(t *testing.T) {
	repo := testutil.NewMemoryRepository()
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	s.Apply(OpenCreate{})
	first := s.Apply(Submit{Title: "one"})
	second := s.Apply(Submit{Title: "two"})

	// Both inserts complete before either refetch runs.
	var follow []Task
	for _, e := range runTasks(t, api, append(first, second...)) {
		follow = append(follow, s.Apply(e)...)
	}
	Drain(ctx, s, api, follow)

	if n := len(repo.Todos()); n != 2 {
		t.Fatalf("repository holds %d todos, want 2", n)
	}
	if view := s.View(); len(view.Rows) != 2 {
		t.Errorf("View() rows = %d, want 2", len(view.Rows))
	}
	if s.Refresh() != 2 {
		t.Errorf("Refresh() = %d, want 2", s.Refresh())
	}
}

func TestStore_LateCompletionKeepsLaterModal(t *testing.T) {
	b := todo.Todo{ID: "b", Title: "second", Description: "row b", Created: time.UnixMilli(2).UTC()}
	repo := testutil.NewMemoryRepository(b)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	s.Apply(OpenCreate{})
	inserts := s.Apply(Submit{Title: "created", Description: "late"})
	s.Apply(Cancel{})
	s.Apply(OpenEdit{Todo: b})

	events := runTasks(t, api, inserts)
	follow := s.Apply(events[0])

	if !s.ModalVisible() {
		t.Fatal("late insert completion closed the edit modal opened after it")
	}
	if got := s.Editing(); got == nil || got.ID != "b" {
		t.Fatalf("Editing() = %v, want b", got)
	}
	if s.Refresh() != 1 || len(follow) != 1 {
		t.Fatalf("Refresh() = %d with %d follow-up tasks, want 1 and a refetch", s.Refresh(), len(follow))
	}
	Drain(ctx, s, api, follow)
	if n := len(s.View().Rows); n != 2 {
		t.Errorf("View() rows = %d, want 2 after refetch", n)
	}

	// The edit modal still submits and closes on its own completion.
	Drain(ctx, s, api, s.Apply(Submit{Title: "second, edited", Description: "row b"}))
	if s.ModalVisible() {
		t.Error("modal still visible after its own edit completed")
	}
	if got := s.Find("b"); got == nil || got.Title != "second, edited" {
		t.Errorf("Find(b) = %v, want edited title", got)
	}
}

func TestStore_LateEditCompletionKeepsNewCreateModal(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "t", Created: time.UnixMilli(1).UTC()}
	repo := testutil.NewMemoryRepository(a)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	s.Apply(OpenEdit{Todo: a})
	edits := s.Apply(Submit{Title: "t2"})
	s.Apply(OpenCreate{})
	for _, e := range runTasks(t, api, edits) {
		s.Apply(e)
	}

	if !s.ModalVisible() || s.Editing() != nil {
		t.Errorf("ModalVisible() = %v, Editing() = %v; want create modal still open", s.ModalVisible(), s.Editing())
	}
}

func TestStore_FailedSubmitKeepsDraft(t *testing.T) {
	a := todo.Todo{ID: "a", Title: "stored", Description: "stored desc", Created: time.UnixMilli(1).UTC()}
	repo := testutil.NewMemoryRepository(a)
	api := newServiceAPI(repo)
	s := newTestStore()
	ctx := context.Background()
	Drain(ctx, s, api, s.Start())

	repo.SetErr(errors.New("throttled"))
	s.Apply(OpenEdit{Todo: a})
	Drain(ctx, s, api, s.Apply(Submit{Title: "  typed  ", Description: "typed desc"}))

	modal := s.Modal()
	if !modal.Visible || !modal.Editing {
		t.Fatalf("Modal() = %+v, want edit modal open", modal)
	}
	if modal.Title != "  typed  " || modal.Description != "typed desc" {
		t.Errorf("Modal() fields = %q, %q; want the submitted values", modal.Title, modal.Description)
	}

	s.Apply(Cancel{})
	s.Apply(OpenEdit{Todo: a})
	if modal := s.Modal(); modal.Title != "stored" {
		t.Errorf("reopened Modal().Title = %q, want the stored title", modal.Title)
	}
}

func TestStore_StaleFetchDropped(t *testing.T) {
	s := newTestStore()
	a := todo.Todo{ID: "a"}
	b := todo.Todo{ID: "b"}

	s.Apply(Mutated{Op: OpDelete, ID: "x"}) // refresh -> 1
	s.Apply(Mutated{Op: OpDelete, ID: "y"}) // refresh -> 2

	s.Apply(Fetched{Version: 2, Todos: []todo.Todo{b}})
	if s.Loading() {
		t.Fatal("Loading() = true after the current fetch resolved")
	}
	s.Apply(Fetched{Version: 1, Todos: []todo.Todo{a}})

	got := s.Todos()
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Todos() = %+v, want only b", got)
	}
}

func TestStore_OlderFetchShowsUntilCurrentResolves(t *testing.T) {
	s := newTestStore()
	s.Apply(Fetched{Version: 0, Todos: []todo.Todo{{ID: "a"}}})
	s.Apply(Mutated{Op: OpDelete, ID: "a"})

	if got := s.View().Phase; got != PhaseLoading {
		t.Errorf("Phase = %v, want loading while the refetch is in flight", got)
	}
	if len(s.Todos()) != 1 {
		t.Errorf("Todos() = %v, want previous list kept", s.Todos())
	}

	s.Apply(Fetched{Version: 1, Todos: nil})
	if got := s.View().Phase; got != PhaseEmpty {
		t.Errorf("Phase = %v, want empty", got)
	}
}

func TestStore_FetchFailureShowsEmpty(t *testing.T) {
	s := newTestStore()
	s.Apply(Fetched{Version: 0, Todos: []todo.Todo{{ID: "a"}}})
	s.Apply(Mutated{Op: OpDelete})
	s.Apply(Fetched{Version: 1, Err: &todo.ServerError{Message: "boom"}})

	if got := s.View().Phase; got != PhaseEmpty {
		t.Errorf("Phase = %v, want empty after failed fetch", got)
	}
}

func TestStore_Find(t *testing.T) {
	s := newTestStore()
	s.Apply(Fetched{Version: 0, Todos: []todo.Todo{{ID: "a", Title: "first"}}})

	if got := s.Find("a"); got == nil || got.Title != "first" {
		t.Errorf("Find(a) = %v", got)
	}
	if got := s.Find("b"); got != nil {
		t.Errorf("Find(b) = %v, want nil", got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseLoading:   "loading",
		PhaseEmpty:     "empty",
		PhasePopulated: "populated",
		Phase(9):       "unknown",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
