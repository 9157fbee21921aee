package task

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hitoshi/taskman/internal/model"
)

// memoryTaskRepo はPostgresTaskRepoと同じ絞り込み規則を持つインメモリ実装。
type memoryTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task

	// エラー注入用
	findByIDErr error
	listErr     error
	updateErr   error
	// beforeDelete はDelete実行直前に呼ばれる
	beforeDelete func(id string)
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{tasks: make(map[string]model.Task)}
}

func (r *memoryTaskRepo) FindByID(_ context.Context, id string) (*model.Task, error) {
	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memoryTaskRepo) ListByUser(_ context.Context, userID string, f model.TaskFilter) ([]*model.Task, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Task
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.From != nil && (t.DueDate == nil || t.DueDate.Before(*f.From)) {
			continue
		}
		if f.To != nil && (t.DueDate == nil || t.DueDate.After(*f.To)) {
			continue
		}
		t := t
		matched = append(matched, &t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	start := f.Offset()
	if start >= len(matched) {
		return nil, nil
	}
	end := start + f.Limit()
	if end < start || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *memoryTaskRepo) Create(_ context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = *t
	return nil
}

func (r *memoryTaskRepo) Update(_ context.Context, t *model.Task) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.tasks[t.ID]; ok {
		updated := *t
		updated.UserID = existing.UserID
		r.tasks[t.ID] = updated
	}
	return nil
}

func (r *memoryTaskRepo) Delete(_ context.Context, id string) error {
	if r.beforeDelete != nil {
		r.beforeDelete(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *memoryTaskRepo) get(id string) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}
