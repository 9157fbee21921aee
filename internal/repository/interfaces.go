// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateEmail はusers.emailの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// 比較は保存値に対して大文字小文字を区別する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// FindByID は指定IDのタスクを所有者に関係なく取得する。見つからない場合はnilを返す。
	// 所有者の検証は呼び出し側の責務とする。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByUser はユーザーのタスクをフィルタ・ページネーション付きで返す。
	// 作成順（created_at, id）で並べる。
	ListByUser(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクを上書き保存する。所有者は変更しない。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。対象が存在しない場合もエラーにしない。
	Delete(ctx context.Context, id string) error
}
