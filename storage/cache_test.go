package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"kanbanflow/domain"
)

type fakeBackend struct {
	tasks    []domain.Task
	getCalls int
	err      error
}

func (f *fakeBackend) GetAll(ctx context.Context, boardID string) ([]domain.Task, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeBackend) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i] = p.Apply(f.tasks[i])
			return f.tasks[i], nil
		}
	}
	return domain.Task{}, domain.NotFoundError{ID: id}
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundError{ID: id}
}

func newCacheForTest(t *testing.T, base backend) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(base, client, time.Minute), mr
}

func TestCacheServesSecondReadFromRedis(t *testing.T) {
	base := &fakeBackend{tasks: []domain.Task{domain.NewTask(domain.Task{ID: "task-1", Title: "t"})}}
	cache, _ := newCacheForTest(t, base)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tasks, err := cache.GetAll(ctx, domain.DefaultBoardID)
		if err != nil {
			t.Fatalf("get all: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "task-1" {
			t.Fatalf("unexpected tasks: %#v", tasks)
		}
	}
	if base.getCalls != 1 {
		t.Fatalf("expected a single backend read, got %d", base.getCalls)
	}
}

func TestCacheEvictsOnMutation(t *testing.T) {
	base := &fakeBackend{}
	cache, _ := newCacheForTest(t, base)
	ctx := context.Background()

	if _, err := cache.GetAll(ctx, domain.DefaultBoardID); err != nil {
		t.Fatalf("get all: %v", err)
	}
	created, err := cache.Create(ctx, domain.NewTask(domain.Task{Title: "fresh"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tasks, err := cache.GetAll(ctx, domain.DefaultBoardID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("expected created task after eviction, got %#v", tasks)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected eviction to force a backend re-read, got %d calls", base.getCalls)
	}
}

func TestCacheUpdateAndDeleteInvalidate(t *testing.T) {
	seed := domain.NewTask(domain.Task{ID: "task-1", Title: "t"})
	base := &fakeBackend{tasks: []domain.Task{seed}}
	cache, _ := newCacheForTest(t, base)
	ctx := context.Background()

	if _, err := cache.GetAll(ctx, ""); err != nil {
		t.Fatalf("get all: %v", err)
	}
	done := domain.StatusDone
	if _, err := cache.Update(ctx, "task-1", domain.Patch{Status: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	tasks, err := cache.GetAll(ctx, "")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if tasks[0].Status != domain.StatusDone {
		t.Fatalf("expected update to be visible, got %q", tasks[0].Status)
	}

	if err := cache.Delete(ctx, "task-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, err = cache.GetAll(ctx, "")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty board after delete, got %#v", tasks)
	}
}

func TestCacheFallsBackWhenRedisIsDown(t *testing.T) {
	base := &fakeBackend{tasks: []domain.Task{domain.NewTask(domain.Task{ID: "task-1", Title: "t"})}}
	cache, mr := newCacheForTest(t, base)
	mr.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tasks, err := cache.GetAll(ctx, "")
		if err != nil {
			t.Fatalf("get all with redis down: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("unexpected tasks: %#v", tasks)
		}
	}
	if base.getCalls != 2 {
		t.Fatalf("expected every read to hit the backend, got %d", base.getCalls)
	}
}

func TestCacheCorruptEntryIsDiscarded(t *testing.T) {
	base := &fakeBackend{tasks: []domain.Task{domain.NewTask(domain.Task{ID: "task-1", Title: "t"})}}
	cache, mr := newCacheForTest(t, base)
	ctx := context.Background()

	if err := mr.Set(tasksCacheKey(""), "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	tasks, err := cache.GetAll(ctx, "")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Fatalf("expected backend data, got %#v", tasks)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected corrupt entry to fall through to the backend")
	}
}
