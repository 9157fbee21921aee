// Package task はユーザーが所有するタスクの作成・検索・更新・削除を提供する。
//
// すべての操作は呼び出し元のユーザーIDを受け取り、そのユーザーが所有するタスクのみを扱う。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// タスク操作名（メトリクスのラベル）
const (
	OpCreate       = "create"
	OpUpdate       = "update"
	OpUpdateStatus = "update_status"
	OpDelete       = "delete"
)

// MaxTitleLength はtasks.titleカラムに保存できる最大文字数。
const MaxTitleLength = 500

// MetricsRecorder はタスク操作の記録先。
type MetricsRecorder interface {
	RecordTaskOperation(operation string)
}

// CreateInput はタスク作成の入力を表す。
type CreateInput struct {
	Title       string
	Description string
	DueDate     *string
	Status      *model.TaskStatus
}

// UpdateInput はタスク更新の入力を表す。nilのフィールドは現在の値を保持する。
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Status      *model.TaskStatus
}

// Service はタスクに関するビジネスロジックを提供する。
type Service struct {
	repo      repository.TaskRepository
	sanitizer security.Sanitizer
	metrics   MetricsRecorder
	now       func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(repo repository.TaskRepository, sanitizer security.Sanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Create はownerIDを所有者とするタスクを作成する。
func (s *Service) Create(ctx context.Context, in CreateInput, ownerID string) (*model.Task, error) {
	title, err := s.cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}

	status := model.TaskStatusTodo
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, invalidStatusError(*in.Status)
		}
		status = *in.Status
	}

	var dueDate *time.Time
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = &d
	}

	now := s.now().UTC()
	t := &model.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: s.sanitizer.Sanitize(in.Description),
		DueDate:     dueDate,
		Status:      status,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	slog.Info("task created",
		slog.String("task_id", t.ID),
		slog.String("user_id", ownerID),
	)
	s.record(OpCreate)
	return t, nil
}

// FindAll はownerIDのタスクをフィルタとページネーションを適用して返す。
// 結果は作成順に並ぶ。該当がない場合は空スライスを返す。
func (s *Service) FindAll(ctx context.Context, ownerID string, filter model.TaskFilter) ([]*model.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}

// FindOne は指定IDのタスクを返す。
// 存在しない場合はNotFound、所有者が異なる場合はForbiddenを返す。存在確認が先に行われる。
func (s *Service) FindOne(ctx context.Context, id, ownerID string) (*model.Task, error) {
	return s.findOwned(ctx, id, ownerID)
}

// findOwned は所有者検証付きでタスクを取得する。更新・削除系の操作はすべてこれを経由する。
func (s *Service) findOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	if t.UserID != ownerID {
		slog.Warn("task access denied",
			slog.String("task_id", id),
			slog.String("user_id", ownerID),
		)
		return nil, model.NewForbiddenError()
	}
	return t, nil
}

// Update は指定されたフィールドのみをマージして保存する。
// DueDateが未指定または空文字列の場合は既存の値を保持する。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, ownerID string) (*model.Task, error) {
	current, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	t := *current

	if in.Title != nil {
		title, err := s.cleanTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, invalidStatusError(*in.Status)
		}
		t.Status = *in.Status
	}

	if err := s.save(ctx, &t); err != nil {
		return nil, err
	}
	s.record(OpUpdate)
	return &t, nil
}

// Remove は指定IDのタスクを削除する。
// 所有者検証後に別リクエストが先に削除していてもエラーにしない。
func (s *Service) Remove(ctx context.Context, id, ownerID string) error {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	slog.Info("task deleted",
		slog.String("task_id", id),
		slog.String("user_id", ownerID),
	)
	s.record(OpDelete)
	return nil
}

// UpdateStatus はタスクのステータスのみを変更する。
// 所有者検証を先に行い、その後ステータス値を検証する。不正な値の場合は変更しない。
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.TaskStatus, ownerID string) (*model.Task, error) {
	current, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalidStatusError(status)
	}

	t := *current
	t.Status = status
	if err := s.save(ctx, &t); err != nil {
		return nil, err
	}
	s.record(OpUpdateStatus)
	return &t, nil
}

// GroupByStatus は先頭pageSize件のタスクを取得順を保ったままステータスごとに分割する。
// pageSizeが0以下の場合はmodel.DefaultPageSizeを使う。各グループは空でもnilにならない。
func (s *Service) GroupByStatus(ctx context.Context, ownerID string, pageSize int) (*model.TaskGroups, error) {
	tasks, err := s.FindAll(ctx, ownerID, model.TaskFilter{Page: 1, PageSize: pageSize})
	if err != nil {
		return nil, err
	}

	groups := &model.TaskGroups{
		Todo:       []*model.Task{},
		InProgress: []*model.Task{},
		Done:       []*model.Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusTodo:
			groups.Todo = append(groups.Todo, t)
		case model.TaskStatusInProgress:
			groups.InProgress = append(groups.InProgress, t)
		case model.TaskStatusDone:
			groups.Done = append(groups.Done, t)
		}
	}
	return groups, nil
}

// FindByStatus は指定ステータスのタスクを全件返す。
func (s *Service) FindByStatus(ctx context.Context, ownerID string, status model.TaskStatus) ([]*model.Task, error) {
	return s.findEvery(ctx, ownerID, model.TaskFilter{Status: &status})
}

// SearchByTitle はタイトルに文字列を含むタスクを大文字小文字を区別せずに全件返す。
func (s *Service) SearchByTitle(ctx context.Context, ownerID, query string) ([]*model.Task, error) {
	return s.findEvery(ctx, ownerID, model.TaskFilter{Title: query})
}

// FindByDateRange は期限がfromからtoの範囲（両端を含む）にあるタスクを全件返す。
func (s *Service) FindByDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]*model.Task, error) {
	if to.Before(from) {
		return nil, model.NewInvalidInputError("from must not be after to")
	}
	return s.findEvery(ctx, ownerID, model.TaskFilter{From: &from, To: &to})
}

// findEvery はページを順に取得し、フィルタに一致する全件を返す。
func (s *Service) findEvery(ctx context.Context, ownerID string, filter model.TaskFilter) ([]*model.Task, error) {
	filter.PageSize = model.DefaultPageSize
	all := []*model.Task{}
	for page := 1; ; page++ {
		filter.Page = page
		tasks, err := s.FindAll(ctx, ownerID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if len(tasks) < filter.PageSize {
			return all, nil
		}
	}
}

func (s *Service) save(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordTaskOperation(op)
	}
}

// cleanTitle はマークアップを除去し、空または長すぎるタイトルをInvalidInputとする。
func (s *Service) cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if title == "" {
		return "", model.NewInvalidInputError("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", model.NewInvalidInputError(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return title, nil
}

func parseDueDate(raw string) (time.Time, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, model.NewInvalidInputError("dueDate is not a valid date")
	}
	return d, nil
}

func invalidStatusError(status model.TaskStatus) error {
	return model.NewInvalidInputError(fmt.Sprintf("status must be one of TODO, IN_PROGRESS, DONE (got %q)", status))
}
