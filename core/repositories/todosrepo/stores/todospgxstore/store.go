// Package todospgxstore implements todo storage on Postgres through pgx.
package todospgxstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/infrastructure/postgresdb"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/jackc/pgx/v5"
)

const todoColumns = "id, title, author, completed, created_at, updated_at"

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) List(ctx context.Context) ([]todosrepo.Todo, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	sl, err := pgx.CollectRows(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return sl, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (todosrepo.Todo, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id": id,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}

	return todo, nil
}

func (s *Store) Create(ctx context.Context, nt todosrepo.NewTodo) (todosrepo.Todo, error) {
	query := `INSERT INTO todos (title, author)
		VALUES (@title, @author)
		RETURNING ` + todoColumns

	args := pgx.NamedArgs{
		"title":  nt.Title,
		"author": nt.Author,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}

	return todo, nil
}

func (s *Store) Update(ctx context.Context, id int64, ut todosrepo.UpdateTodo) (todosrepo.Todo, error) {
	// Column names are fixed literals; only values travel as parameters.
	sets := []string{"updated_at = now()"}
	args := pgx.NamedArgs{
		"id": id,
	}

	if ut.Title != nil {
		sets = append(sets, "title = @title")
		args["title"] = *ut.Title
	}
	if ut.Author != nil {
		sets = append(sets, "author = @author")
		args["author"] = *ut.Author
	}
	if ut.Completed != nil {
		sets = append(sets, "completed = @completed")
		args["completed"] = *ut.Completed
	}

	query := fmt.Sprintf(`UPDATE todos
		SET %s
		WHERE id = @id
		RETURNING `+todoColumns, strings.Join(sets, ", "))

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}

	return todo, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM todos
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id": id,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return postgresdb.HandlePgError(err)
	}

	if tag.RowsAffected() == 0 {
		return todosrepo.ErrNotFound
	}

	return nil
}
