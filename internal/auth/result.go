package auth

import "github.com/LozFunk/game-trackr/internal/model"

// FailureReason は認証失敗の内部理由コードを表す。
// ログにのみ記録し、ユーザー向けメッセージには反映しない
// （ユーザー名の存在有無を列挙攻撃から守るため）。
type FailureReason string

const (
	// ReasonUserNotFound は指定ユーザー名のユーザーが存在しないことを示す。
	ReasonUserNotFound FailureReason = "user_not_found"
	// ReasonWrongPassword はパスワードが一致しないことを示す。
	ReasonWrongPassword FailureReason = "wrong_password"
	// ReasonNoPassword はGoogleログイン専用アカウントに対する
	// パスワード認証の試行を示す。
	ReasonNoPassword FailureReason = "no_password_set"
)

// Result はパスワード認証の結果を表す。
// 成功時はUserが設定され、失敗時はReasonに内部理由コードが入る。
type Result struct {
	User   *model.User
	Reason FailureReason
}

// OK は認証が成功したかどうかを返す。
func (r Result) OK() bool {
	return r.User != nil
}

// failure は失敗結果を生成する。
func failure(reason FailureReason) Result {
	return Result{Reason: reason}
}
