// Package todosrepo provides business access to todos in the system.
package todosrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bosn/zero-todo/sdk/logger"
)

// Set of error values for CRUD operations on the todo resource.
var (
	ErrNotFound = errors.New("todo not found")
)

// maxFieldLength bounds title and author, matching the VARCHAR(255)
// columns. Counted in runes after trimming.
const maxFieldLength = 255

// listCacheTTL bounds how stale a cached list may get if an invalidation
// is ever lost.
const listCacheTTL = 15 * time.Second

// ValidationError reports input the caller can fix. The message is safe to
// surface verbatim.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// NewValidationError constructs a caller-facing validation failure.
func NewValidationError(msg string) error {
	return ValidationError{msg: msg}
}

// Storer defines the data storage interface for todos.
type Storer interface {
	List(ctx context.Context) ([]Todo, error)
	GetByID(ctx context.Context, id int64) (Todo, error)
	Create(ctx context.Context, nt NewTodo) (Todo, error)
	Update(ctx context.Context, id int64, ut UpdateTodo) (Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Cacher defines the optional list cache. Implementations must treat a
// miss as (nil, nil).
type Cacher interface {
	GetList(ctx context.Context) ([]Todo, error)
	SetList(ctx context.Context, todos []Todo, ttl time.Duration) error
	DropList(ctx context.Context) error
}

// Repository provides access to todo storage with business validation.
type Repository struct {
	log    *logger.Logger
	storer Storer
	cacher Cacher
}

// RepositoryOption configures optional repository collaborators.
type RepositoryOption func(*Repository)

// WithCache attaches a list cache. The store stays authoritative; every
// mutation drops the cached list before returning.
func WithCache(cacher Cacher) RepositoryOption {
	return func(r *Repository) {
		r.cacher = cacher
	}
}

// NewRepository creates a new todo repository.
func NewRepository(log *logger.Logger, storer Storer, opts ...RepositoryOption) *Repository {
	r := &Repository{
		log:    log,
		storer: storer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns all todos, newest first.
func (r *Repository) List(ctx context.Context) ([]Todo, error) {
	if r.cacher != nil {
		if todos, err := r.cacher.GetList(ctx); err == nil && todos != nil {
			return todos, nil
		}
	}

	records, err := r.storer.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("todo repository list: %w", err)
	}

	if r.cacher != nil {
		if err := r.cacher.SetList(ctx, records, listCacheTTL); err != nil {
			r.log.DebugContext(ctx, "todo list cache set failed", "err", err)
		}
	}

	return records, nil
}

// GetByID returns a single todo.
func (r *Repository) GetByID(ctx context.Context, id int64) (Todo, error) {
	record, err := r.storer.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, fmt.Errorf("todo repository get by id: %w", err)
	}
	return record, nil
}

// Create validates and persists a new todo. Completed always starts false.
func (r *Repository) Create(ctx context.Context, nt NewTodo) (Todo, error) {
	nt.Title = strings.TrimSpace(nt.Title)
	nt.Author = strings.TrimSpace(nt.Author)

	if nt.Title == "" {
		return Todo{}, NewValidationError("Title is required")
	}
	if nt.Author == "" {
		return Todo{}, NewValidationError("Author is required")
	}
	if utf8.RuneCountInString(nt.Title) > maxFieldLength {
		return Todo{}, NewValidationError("Title must be 255 characters or fewer")
	}
	if utf8.RuneCountInString(nt.Author) > maxFieldLength {
		return Todo{}, NewValidationError("Author must be 255 characters or fewer")
	}

	record, err := r.storer.Create(ctx, nt)
	if err != nil {
		return Todo{}, fmt.Errorf("todo repository create: %w", err)
	}

	r.dropListCache(ctx)

	return record, nil
}

// Update validates and applies a partial update. Only supplied fields
// change; updated_at refreshes on every successful call.
func (r *Repository) Update(ctx context.Context, id int64, ut UpdateTodo) (Todo, error) {
	if ut.Title != nil {
		title := strings.TrimSpace(*ut.Title)
		if title == "" {
			return Todo{}, NewValidationError("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxFieldLength {
			return Todo{}, NewValidationError("Title must be 255 characters or fewer")
		}
		ut.Title = &title
	}

	if ut.Author != nil {
		author := strings.TrimSpace(*ut.Author)
		if author == "" {
			return Todo{}, NewValidationError("Author cannot be empty")
		}
		if utf8.RuneCountInString(author) > maxFieldLength {
			return Todo{}, NewValidationError("Author must be 255 characters or fewer")
		}
		ut.Author = &author
	}

	if ut.Title == nil && ut.Author == nil && ut.Completed == nil {
		return Todo{}, NewValidationError("Nothing to update")
	}

	record, err := r.storer.Update(ctx, id, ut)
	if err != nil {
		if isNotFound(err) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, fmt.Errorf("todo repository update: %w", err)
	}

	r.dropListCache(ctx)

	return record, nil
}

// Delete removes a todo permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.storer.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("todo repository delete: %w", err)
	}

	r.dropListCache(ctx)

	return nil
}

func (r *Repository) dropListCache(ctx context.Context) {
	if r.cacher == nil {
		return
	}
	if err := r.cacher.DropList(ctx); err != nil {
		r.log.DebugContext(ctx, "todo list cache drop failed", "err", err)
	}
}

// isNotFound reports whether a store error means the row doesn't exist.
// Stores translate their driver's no-rows sentinel to ErrNotFound before
// returning.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
