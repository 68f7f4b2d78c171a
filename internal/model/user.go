// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはGoogleログインのみで作成されたアカウントの場合は空になる。
// GoogleIDはローカル登録のみのアカウントの場合は空になる。
// 不変条件: PasswordHashとGoogleIDの少なくとも一方は設定されている。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	GoogleID     string
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDは暗号的に安全な乱数から生成される推測不可能なトークン。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LibraryEntry はユーザーのライブラリに追加されたゲームを表す。
// ゲーム名とカバー画像URLは外部メタデータAPIから取得した値の非正規化コピー。
// 不変条件: (UserID, GameID) の組み合わせは一意。
type LibraryEntry struct {
	ID       int64
	UserID   string
	GameID   int64
	GameName string
	CoverURL string
	AddedAt  time.Time
}

// Comment はゲームページに投稿されたコメントを表す。
// Usernameは投稿時点のユーザー名の非正規化コピー。
// EditedAtは未編集の場合nil。
type Comment struct {
	ID        string
	GameID    int64
	UserID    string
	Username  string
	Body      string
	CreatedAt time.Time
	EditedAt  *time.Time
}
