package todosrepo

import "time"

// Todo is the persisted entity representing one task.
type Todo struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewTodo contains the fields for creating a new todo.
type NewTodo struct {
	Title  string
	Author string
}

// UpdateTodo contains the fields for updating an existing todo. All fields
// are optional (pointers) to support partial updates.
type UpdateTodo struct {
	Title     *string
	Author    *string
	Completed *bool
}
