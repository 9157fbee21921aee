package model

import (
	"math"
	"time"
)

const (
	// DefaultPage はページ番号未指定時の値。
	DefaultPage = 1
	// DefaultPageSize はページサイズ未指定時の値。
	DefaultPageSize = 100
	// MaxOffset はOffsetが返す上限。これを超えるページは常に空になる。
	MaxOffset = math.MaxInt32
)

// TaskFilter はタスク一覧の絞り込み条件を表す。
// すべての条件はANDで結合され、常に所有者で絞り込まれる。
type TaskFilter struct {
	Status   *TaskStatus // 完全一致
	Title    string      // 大文字小文字を区別しない部分一致
	From     *time.Time  // dueDateの下限（境界を含む）
	To       *time.Time  // dueDateの上限（境界を含む）
	Page     int         // 1始まり。0以下はDefaultPage
	PageSize int         // 0以下はDefaultPageSize
}

// Limit は取得件数の上限を返す。
func (f TaskFilter) Limit() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}

// Offset は読み飛ばす件数を返す。(page-1)*pageSizeがMaxOffsetを超える場合はMaxOffsetに丸める。
func (f TaskFilter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = DefaultPage
	}
	limit := f.Limit()
	if page-1 > MaxOffset/limit {
		return MaxOffset
	}
	return (page - 1) * limit
}
