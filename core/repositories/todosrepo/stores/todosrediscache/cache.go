// Package todosrediscache implements the todo list cache on Redis. The
// cached list is dropped on every mutation, so Redis only ever serves
// reads the store has already answered.
package todosrediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/redis/go-redis/v9"
)

const listKey = "todos:list"

type Cache struct {
	log *logger.Logger
	rdb *redis.Client
}

func NewCache(log *logger.Logger, rdb *redis.Client) *Cache {
	return &Cache{
		log: log,
		rdb: rdb,
	}
}

// GetList returns the cached list, or (nil, nil) on a miss.
func (c *Cache) GetList(ctx context.Context) ([]todosrepo.Todo, error) {
	val, err := c.rdb.Get(ctx, listKey).Result()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	var todos []todosrepo.Todo
	if err := json.Unmarshal([]byte(val), &todos); err != nil {
		return nil, err
	}

	return todos, nil
}

func (c *Cache) SetList(ctx context.Context, todos []todosrepo.Todo, ttl time.Duration) error {
	data, err := json.Marshal(todos)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, listKey, data, ttl).Err()
}

func (c *Cache) DropList(ctx context.Context) error {
	return c.rdb.Del(ctx, listKey).Err()
}
