package todosrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/bosn/zero-todo/sdk/validation"
)

// stubStorer implements todosrepo.Storer for tests.
type stubStorer struct {
	todos []todosrepo.Todo

	lastNew    todosrepo.NewTodo
	lastUpdate todosrepo.UpdateTodo
	lastID     int64

	err error
}

func (s *stubStorer) List(ctx context.Context) ([]todosrepo.Todo, error) {
	return s.todos, s.err
}

func (s *stubStorer) GetByID(ctx context.Context, id int64) (todosrepo.Todo, error) {
	s.lastID = id
	if s.err != nil {
		return todosrepo.Todo{}, s.err
	}
	for _, t := range s.todos {
		if t.ID == id {
			return t, nil
		}
	}
	return todosrepo.Todo{}, todosrepo.ErrNotFound
}

func (s *stubStorer) Create(ctx context.Context, nt todosrepo.NewTodo) (todosrepo.Todo, error) {
	s.lastNew = nt
	if s.err != nil {
		return todosrepo.Todo{}, s.err
	}
	now := time.Now().UTC()
	return todosrepo.Todo{
		ID:        1,
		Title:     nt.Title,
		Author:    nt.Author,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *stubStorer) Update(ctx context.Context, id int64, ut todosrepo.UpdateTodo) (todosrepo.Todo, error) {
	s.lastID = id
	s.lastUpdate = ut
	if s.err != nil {
		return todosrepo.Todo{}, s.err
	}
	todo, err := s.GetByID(ctx, id)
	if err != nil {
		return todosrepo.Todo{}, err
	}
	if ut.Title != nil {
		todo.Title = *ut.Title
	}
	if ut.Author != nil {
		todo.Author = *ut.Author
	}
	if ut.Completed != nil {
		todo.Completed = *ut.Completed
	}
	todo.UpdatedAt = time.Now().UTC()
	return todo, nil
}

func (s *stubStorer) Delete(ctx context.Context, id int64) error {
	s.lastID = id
	if s.err != nil {
		return s.err
	}
	for _, t := range s.todos {
		if t.ID == id {
			return nil
		}
	}
	return todosrepo.ErrNotFound
}

// stubCacher records cache traffic.
type stubCacher struct {
	list []todosrepo.Todo

	gets  int
	sets  int
	drops int
}

func (c *stubCacher) GetList(ctx context.Context) ([]todosrepo.Todo, error) {
	c.gets++
	return c.list, nil
}

func (c *stubCacher) SetList(ctx context.Context, todos []todosrepo.Todo, ttl time.Duration) error {
	c.sets++
	c.list = todos
	return nil
}

func (c *stubCacher) DropList(ctx context.Context) error {
	c.drops++
	c.list = nil
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewDefault()
}

var (
	strPtr  = validation.StringPtr
	boolPtr = validation.BoolPtr
)

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   todosrepo.NewTodo
		wantMsg string
	}{
		{"missing title", todosrepo.NewTodo{Author: "ann"}, "Title is required"},
		{"whitespace title", todosrepo.NewTodo{Title: "   ", Author: "ann"}, "Title is required"},
		{"missing author", todosrepo.NewTodo{Title: "buy milk"}, "Author is required"},
		{"whitespace author", todosrepo.NewTodo{Title: "buy milk", Author: "\t"}, "Author is required"},
		{"long title", todosrepo.NewTodo{Title: strings.Repeat("x", 256), Author: "ann"}, "Title must be 255 characters or fewer"},
		{"long author", todosrepo.NewTodo{Title: "buy milk", Author: strings.Repeat("y", 256)}, "Author must be 255 characters or fewer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := todosrepo.NewRepository(testLogger(), &stubStorer{})

			_, err := repo.Create(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var ve todosrepo.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("got message %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateTrimsAndPersists(t *testing.T) {
	storer := &stubStorer{}
	repo := todosrepo.NewRepository(testLogger(), storer)

	todo, err := repo.Create(context.Background(), todosrepo.NewTodo{
		Title:  "  buy milk  ",
		Author: "  ann  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if storer.lastNew.Title != "buy milk" || storer.lastNew.Author != "ann" {
		t.Errorf("store received %+v, want trimmed fields", storer.lastNew)
	}
	if todo.Completed {
		t.Error("new todo must start not completed")
	}
}

func TestCreateMaxLengthBoundary(t *testing.T) {
	storer := &stubStorer{}
	repo := todosrepo.NewRepository(testLogger(), storer)

	// Exactly 255 runes is allowed.
	title := strings.Repeat("a", 255)
	if _, err := repo.Create(context.Background(), todosrepo.NewTodo{Title: title, Author: "ann"}); err != nil {
		t.Fatalf("255-rune title rejected: %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   todosrepo.UpdateTodo
		wantMsg string
	}{
		{"empty title", todosrepo.UpdateTodo{Title: strPtr("  ")}, "Title cannot be empty"},
		{"empty author", todosrepo.UpdateTodo{Author: strPtr("")}, "Author cannot be empty"},
		{"long title", todosrepo.UpdateTodo{Title: strPtr(strings.Repeat("x", 256))}, "Title must be 255 characters or fewer"},
		{"nothing to update", todosrepo.UpdateTodo{}, "Nothing to update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := todosrepo.NewRepository(testLogger(), &stubStorer{})

			_, err := repo.Update(context.Background(), 1, tt.input)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("got message %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestUpdatePartial(t *testing.T) {
	storer := &stubStorer{
		todos: []todosrepo.Todo{
			{ID: 7, Title: "buy milk", Author: "ann", Completed: false},
		},
	}
	repo := todosrepo.NewRepository(testLogger(), storer)

	todo, err := repo.Update(context.Background(), 7, todosrepo.UpdateTodo{
		Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if storer.lastUpdate.Title != nil || storer.lastUpdate.Author != nil {
		t.Error("unsupplied fields must stay nil through to the store")
	}
	if !todo.Completed {
		t.Error("completed not applied")
	}
	if todo.Title != "buy milk" || todo.Author != "ann" {
		t.Errorf("untouched fields changed: %+v", todo)
	}
}

func TestUpdateTrimsFields(t *testing.T) {
	storer := &stubStorer{
		todos: []todosrepo.Todo{{ID: 7, Title: "old", Author: "ann"}},
	}
	repo := todosrepo.NewRepository(testLogger(), storer)

	if _, err := repo.Update(context.Background(), 7, todosrepo.UpdateTodo{Title: strPtr("  new title  ")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := *storer.lastUpdate.Title; got != "new title" {
		t.Errorf("store received title %q, want trimmed", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := todosrepo.NewRepository(testLogger(), &stubStorer{})

	_, err := repo.Update(context.Background(), 99, todosrepo.UpdateTodo{Completed: boolPtr(true)})
	if !errors.Is(err, todosrepo.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo := todosrepo.NewRepository(testLogger(), &stubStorer{})

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, todosrepo.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListCacheReadThrough(t *testing.T) {
	storer := &stubStorer{
		todos: []todosrepo.Todo{{ID: 1, Title: "buy milk", Author: "ann"}},
	}
	cacher := &stubCacher{}
	repo := todosrepo.NewRepository(testLogger(), storer, todosrepo.WithCache(cacher))

	// First list misses the cache and fills it.
	first, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if cacher.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cacher.sets)
	}

	// Second list is served from the cache even if the store errors.
	storer.err = errors.New("store down")
	second, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("cached list length %d, want %d", len(second), len(first))
	}
}

func TestMutationsDropListCache(t *testing.T) {
	storer := &stubStorer{
		todos: []todosrepo.Todo{{ID: 1, Title: "buy milk", Author: "ann"}},
	}
	cacher := &stubCacher{list: storer.todos}
	repo := todosrepo.NewRepository(testLogger(), storer, todosrepo.WithCache(cacher))

	ctx := context.Background()

	if _, err := repo.Create(ctx, todosrepo.NewTodo{Title: "t", Author: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Update(ctx, 1, todosrepo.UpdateTodo{Completed: boolPtr(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if cacher.drops != 3 {
		t.Errorf("cache drops = %d, want 3 (one per mutation)", cacher.drops)
	}
}
