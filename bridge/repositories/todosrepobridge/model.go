package todosrepobridge

import (
	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/sdk/validation"
)

// AppTodo is the wire representation of a todo. Timestamps are RFC 3339
// strings in UTC.
type AppTodo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toAppTodo(t todosrepo.Todo) AppTodo {
	return AppTodo{
		ID:        t.ID,
		Title:     t.Title,
		Author:    t.Author,
		Completed: t.Completed,
		CreatedAt: validation.FormatTimeToString(t.CreatedAt),
		UpdatedAt: validation.FormatTimeToString(t.UpdatedAt),
	}
}

func toAppTodos(todos []todosrepo.Todo) []AppTodo {
	app := make([]AppTodo, len(todos))
	for i, t := range todos {
		app[i] = toAppTodo(t)
	}
	return app
}

// CreateTodoRequest carries the fields for creating a todo.
type CreateTodoRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UpdateTodoRequest carries a partial update. Absent fields stay nil so the
// repository can tell "not supplied" from "set to zero value".
type UpdateTodoRequest struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Completed *bool   `json:"completed"`
}

func (r UpdateTodoRequest) toUpdateTodo() todosrepo.UpdateTodo {
	return todosrepo.UpdateTodo{
		Title:     r.Title,
		Author:    r.Author,
		Completed: r.Completed,
	}
}
