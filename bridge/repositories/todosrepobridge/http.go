package todosrepobridge

import (
	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/infrastructure/web"
	"github.com/bosn/zero-todo/sdk/logger"
)

// Config contains everything the bridge needs to construct its routes.
type Config struct {
	Log        *logger.Logger
	Repository *todosrepo.Repository
}

// AddHttpRoutes registers the todo routes on the group. OPTIONS is routed
// explicitly so browser preflights pass through the middleware chain
// instead of being rejected by the mux.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Repository)

	group.GET("/todos", b.httpList)
	group.POST("/todos", b.httpCreate)
	group.PATCH("/todos/{todo_id}", b.httpUpdate)
	group.DELETE("/todos/{todo_id}", b.httpDelete)

	group.OPTIONS("/todos", b.httpPreflight)
	group.OPTIONS("/todos/{todo_id}", b.httpPreflight)
}
