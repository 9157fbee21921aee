// Package model はドメインモデルを定義する。
package model

import "time"

// TaskStatus はタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手。
	TaskStatusTodo TaskStatus = "TODO"
	// TaskStatusInProgress は作業中。
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	// TaskStatusDone は完了。
	TaskStatusDone TaskStatus = "DONE"
)

// TaskStatuses は有効なステータスを定義順に返す。
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// IsValid はステータスが列挙値のいずれかであるかを返す。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に認証済みの呼び出し元から設定され、以後変更されない。
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Status      TaskStatus
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskGroups はステータスごとに分割したタスク一覧を表す。
type TaskGroups struct {
	Todo       []*Task
	InProgress []*Task
	Done       []*Task
}

// Len は全グループのタスク数の合計を返す。
func (g *TaskGroups) Len() int {
	return len(g.Todo) + len(g.InProgress) + len(g.Done)
}
