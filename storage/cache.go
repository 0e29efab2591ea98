package storage

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"kanbanflow/domain"
)

type backend interface {
	GetAll(ctx context.Context, boardID string) ([]domain.Task, error)
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Cache wraps a task store with Redis-backed caching of board task lists.
// Any mutation evicts every list the cache has served, so reads after a
// write always reach the backing store. Redis failures never surface to the
// caller; the cache degrades to a pass-through.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration

	mu     sync.Mutex
	boards map[string]struct{}
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		base:   base,
		redis:  client,
		ttl:    ttl,
		boards: make(map[string]struct{}),
	}
}

func (c *Cache) GetAll(ctx context.Context, boardID string) ([]domain.Task, error) {
	if tasks, ok := c.loadTasks(ctx, boardID); ok {
		return tasks, nil
	}
	tasks, err := c.base.GetAll(ctx, boardID)
	if err != nil {
		return nil, err
	}
	c.storeTasks(ctx, boardID, tasks)
	return tasks, nil
}

func (c *Cache) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	created, err := c.base.Create(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return created, nil
}

func (c *Cache) Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error) {
	updated, err := c.base.Update(ctx, id, p)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return updated, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) loadTasks(ctx context.Context, boardID string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(boardID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, tasksCacheKey(boardID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(boardID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeTasks(ctx context.Context, boardID string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	if c.redis.Set(ctx, tasksCacheKey(boardID), data, c.ttl).Err() == nil {
		c.mu.Lock()
		c.boards[boardID] = struct{}{}
		c.mu.Unlock()
	}
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	c.mu.Lock()
	keys := make([]string, 0, len(c.boards))
	for boardID := range c.boards {
		keys = append(keys, tasksCacheKey(boardID))
	}
	c.boards = make(map[string]struct{})
	c.mu.Unlock()
	if len(keys) == 0 {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func tasksCacheKey(boardID string) string {
	if boardID == "" {
		return "tasks:all"
	}
	return "tasks:board:" + boardID
}
