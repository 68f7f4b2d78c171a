package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/LozFunk/game-trackr/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// PostgresLibraryRepoはLibraryRepositoryインターフェースを満たすことを検証
func TestPostgresLibraryRepo_ImplementsInterface(t *testing.T) {
	var _ LibraryRepository = (*PostgresLibraryRepo)(nil)
}

// PostgresCommentRepoはCommentRepositoryインターフェースを満たすことを検証
func TestPostgresCommentRepo_ImplementsInterface(t *testing.T) {
	var _ CommentRepository = (*PostgresCommentRepo)(nil)
}

// 各リポジトリのコンストラクタが正しく初期化されることを検証
func TestNewRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("expected non-nil session repo")
	}
	if NewPostgresLibraryRepo(nil) == nil {
		t.Error("expected non-nil library repo")
	}
	if NewPostgresCommentRepo(nil) == nil {
		t.Error("expected non-nil comment repo")
	}
}

// nullIfEmptyが空文字列をNULLに変換することを検証
func TestNullIfEmpty(t *testing.T) {
	tests := []struct {
		input string
		want  sql.NullString
	}{
		{"", sql.NullString{String: "", Valid: false}},
		{"value", sql.NullString{String: "value", Valid: true}},
	}

	for _, tt := range tests {
		if got := nullIfEmpty(tt.input); got != tt.want {
			t.Errorf("nullIfEmpty(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

// Userモデルの資格情報フィールドが空文字列を既定値とすることを検証。
// リポジトリは空文字列とNULLを相互に変換する。
func TestUserModel_CredentialDefaults(t *testing.T) {
	user := &model.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	}

	if user.PasswordHash != "" {
		t.Error("password hash should be empty by default")
	}
	if user.GoogleID != "" {
		t.Error("google ID should be empty by default")
	}
}

// SessionRepoのFindByIDが期限切れセッションを返さないことの期待動作
func TestSessionModel_Expiry(t *testing.T) {
	expired := &model.Session{
		ID:        "expired-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	if expired.ExpiresAt.After(time.Now()) {
		t.Error("expected session to be expired")
	}
}

// CommentモデルのEditedAtがnil許容であることを検証。
// 未編集のコメントはedited_atがNULLのまま保存される。
func TestCommentModel_NilEditedAt(t *testing.T) {
	comment := &model.Comment{
		ID:       "comment-1",
		GameID:   42,
		UserID:   "user-1",
		Username: "alice",
		Body:     "面白い",
	}

	if comment.EditedAt != nil {
		t.Error("edited_at should be nil by default")
	}
}
