// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizerService はコメント本文をサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// コメントはプレーンテキストとして扱うため、bluemondayの
// 厳格ポリシーで全てのHTMLタグを除去する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizerService はコメント本文のサニタイズ機能のインターフェースを定義する。
// コメント保存前に使用される。
type CommentSanitizerService interface {
	// Sanitize はコメント本文から全てのHTMLタグを除去して返す。
	// script, iframe, style等のタグおよびon*イベント属性は全て除去される。
	// 戻り値はプレーンテキストであり、&や<などの文字は実体参照化されない
	// （表示時のエスケープはhtml/templateが行う）。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// コメントに書式は不要なため、許可タグなしの厳格ポリシーを使用する。
func NewCommentSanitizer() *commentSanitizer {
	return &commentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はコメント本文から全てのHTMLタグを除去して返す。
// bluemondayはタグ除去後のテキストを実体参照化して返すため、
// html.UnescapeStringで元のプレーンテキストに戻す。そのまま保存すると
// 文字数検証が水増しされ、表示時にも二重エスケープになる。
func (s *commentSanitizer) Sanitize(raw string) string {
	return html.UnescapeString(s.policy.Sanitize(raw))
}
