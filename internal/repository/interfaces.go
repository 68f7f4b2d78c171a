// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/LozFunk/game-trackr/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByGoogleID はGoogleアカウントIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// LibraryRepository はユーザーライブラリの永続化インターフェース。
type LibraryRepository interface {
	// Add はライブラリエントリを追加する。
	// (user_id, game_id) が既に存在する場合は何もしない（エラーにしない）。
	Add(ctx context.Context, entry *model.LibraryEntry) error

	// Remove は指定ユーザー・ゲームのエントリを削除する。存在しない場合も成功とする。
	Remove(ctx context.Context, userID string, gameID int64) error

	// Exists は指定ユーザーのライブラリにゲームが含まれるかを返す。
	Exists(ctx context.Context, userID string, gameID int64) (bool, error)

	// ListByUserID はユーザーのライブラリを追加が新しい順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.LibraryEntry, error)
}

// CommentRepository はコメントの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByGameID はゲームのコメントを作成が新しい順で返す。
	ListByGameID(ctx context.Context, gameID int64) ([]*model.Comment, error)

	// FindByIDAndUser はコメントIDと投稿者IDの両方に一致するコメントを取得する。
	// 一致しない場合はnilを返す（存在しない場合と他人のコメントの場合を区別しない）。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Comment, error)

	// UpdateBody は投稿者本人のコメント本文を更新し、edited_atを設定する。
	// 更新された行数を返す（0の場合は存在しないか他人のコメント）。
	UpdateBody(ctx context.Context, id, userID, body string) (int64, error)

	// Delete は投稿者本人のコメントを削除する。
	// 削除された行数を返す（0の場合は存在しないか他人のコメント）。
	Delete(ctx context.Context, id, userID string) (int64, error)
}
