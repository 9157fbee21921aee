// Package security はユーザー入力に対するセキュリティ処理を提供する。
//
// TextSanitizer はタスクのタイトルや説明に含まれるHTMLマークアップを取り除き、
// プレーンテキストとして保存できる形に整える。"<div>" のようにタグとして解釈できる
// 文字列は本文の一部であっても除去され、元には戻らない。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
type Sanitizer interface {
	// Sanitize は全てのHTMLタグを除去したプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(s string) string
}

// maxSanitizePasses はエンティティ展開後に再び現れるタグを除去する最大回数。
const maxSanitizePasses = 3

// TextSanitizer はbluemondayのStrictPolicyでタグを全て除去するSanitizer実装。
// bluemonday.Policyはスレッドセーフなため複数goroutineから共有できる。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

var _ Sanitizer = (*TextSanitizer)(nil)

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、bluemondayがエスケープしたエンティティを元の文字に戻す。
// "&lt;b&gt;" のようにエンティティ展開でタグが現れる入力は、変化がなくなるまで繰り返し処理する。
func (s *TextSanitizer) Sanitize(in string) string {
	if in == "" {
		return ""
	}
	out := in
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	// 収束しない入力はエスケープ済みのまま保存する
	return s.policy.Sanitize(out)
}
