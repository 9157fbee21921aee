package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts はdueDate等の日付文字列として受け付けるレイアウト。
// タイムゾーンを含まない形式はUTCとして解釈する。
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate は日付文字列をtime.Timeに変換する。
// いずれのレイアウトにも一致しない場合はエラーを返す。
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", s)
}
