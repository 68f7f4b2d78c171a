// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, game, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	ErrCodeDuplicateUsername = "DUPLICATE_USERNAME"
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeCommentForbidden  = "COMMENT_FORBIDDEN"
	ErrCodeGameNotFound      = "GAME_NOT_FOUND"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
)

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// 登録フォームに再表示するユーザー向けメッセージとして扱う。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を入力してください。",
	}
}

// NewAuthFailedError は認証失敗エラーを生成する。
// ユーザー名の存在有無を漏らさないよう、理由に依らず同一メッセージを返す。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewCommentForbiddenError はコメントへの操作が許可されていない場合のエラーを生成する。
// 存在しないコメントIDと他人のコメントIDは意図的に区別しない。
func NewCommentForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentForbidden,
		Message:  "このコメントを編集・削除する権限がありません。",
		Category: "auth",
		Action:   "自分が投稿したコメントのみ操作できます。",
	}
}

// NewGameNotFoundError はゲーム未検出エラーを生成する。
func NewGameNotFoundError(gameID int64) *APIError {
	return &APIError{
		Code:     ErrCodeGameNotFound,
		Message:  fmt.Sprintf("指定されたゲームが見つかりません: %d", gameID),
		Category: "game",
		Action:   "ゲームIDを確認してください。",
	}
}

// NewUpstreamError はメタデータAPI呼び出し失敗エラーを生成する。
// 内部詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewUpstreamError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstream,
		Message:  "ゲーム情報の取得に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
