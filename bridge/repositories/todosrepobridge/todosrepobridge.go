// Package todosrepobridge maintains the web bridge for the todo repository.
package todosrepobridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bosn/zero-todo/bridge/scaffolding/errs"
	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/infrastructure/web"
	"github.com/bosn/zero-todo/sdk/logger"
)

type bridge struct {
	log        *logger.Logger
	repository *todosrepo.Repository
}

func newBridge(log *logger.Logger, repository *todosrepo.Repository) *bridge {
	return &bridge{
		log:        log,
		repository: repository,
	}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	todos, err := b.repository.List(ctx)
	if err != nil {
		return toWebError(err)
	}

	return web.NewJSONResponse(toAppTodos(todos))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var req CreateTodoRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.Newf(errs.InvalidArgument, "Invalid request body")
	}

	todo, err := b.repository.Create(ctx, todosrepo.NewTodo{
		Title:  req.Title,
		Author: req.Author,
	})
	if err != nil {
		return toWebError(err)
	}

	return web.NewJSONResponseWithStatus(toAppTodo(todo), http.StatusCreated)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	id, err := parseID(web.Param(r, "todo_id"))
	if err != nil {
		return errs.Newf(errs.InvalidArgument, "Invalid ID")
	}

	var req UpdateTodoRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.Newf(errs.InvalidArgument, "Invalid request body")
	}

	todo, err := b.repository.Update(ctx, id, req.toUpdateTodo())
	if err != nil {
		return toWebError(err)
	}

	return web.NewJSONResponse(toAppTodo(todo))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	id, err := parseID(web.Param(r, "todo_id"))
	if err != nil {
		return errs.Newf(errs.InvalidArgument, "Invalid ID")
	}

	if err := b.repository.Delete(ctx, id); err != nil {
		return toWebError(err)
	}

	return web.NewEmptyResponse(http.StatusNoContent)
}

// httpPreflight answers CORS preflight requests. The CORS middleware has
// already written the Access-Control headers by the time this runs.
func (b *bridge) httpPreflight(ctx context.Context, r *http.Request) web.Encoder {
	return web.NewNoResponse()
}

// parseID converts the path parameter into a numeric id. Ids that parse but
// match no row (0, negatives) fall through to the store's not-found path.
func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// toWebError translates repository errors into the web error taxonomy.
// Validation messages are safe verbatim; anything else stays server-side.
func toWebError(err error) *errs.Error {
	var ve todosrepo.ValidationError
	if errors.As(err, &ve) {
		return errs.New(errs.InvalidArgument, ve)
	}

	if errors.Is(err, todosrepo.ErrNotFound) {
		return errs.Newf(errs.NotFound, "Todo not found")
	}

	return errs.New(errs.InternalOnlyLog, err)
}
