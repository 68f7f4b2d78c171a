package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LozFunk/game-trackr/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, game_id, user_id, username, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.GameID, comment.UserID, comment.Username, comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByGameID はゲームのコメントを作成が新しい順で返す。
func (r *PostgresCommentRepo) ListByGameID(ctx context.Context, gameID int64) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, user_id, username, body, created_at, edited_at
		 FROM comments
		 WHERE game_id = $1
		 ORDER BY created_at DESC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment := &model.Comment{}
		var editedAt sql.NullTime
		if err := rows.Scan(&comment.ID, &comment.GameID, &comment.UserID, &comment.Username, &comment.Body, &comment.CreatedAt, &editedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if editedAt.Valid {
			comment.EditedAt = &editedAt.Time
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// FindByIDAndUser はコメントIDと投稿者IDの両方に一致するコメントを取得する。
// 一致しない場合はnilを返す。
func (r *PostgresCommentRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Comment, error) {
	comment := &model.Comment{}
	var editedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, user_id, username, body, created_at, edited_at
		 FROM comments
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&comment.ID, &comment.GameID, &comment.UserID, &comment.Username, &comment.Body, &comment.CreatedAt, &editedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if editedAt.Valid {
		comment.EditedAt = &editedAt.Time
	}

	return comment, nil
}

// UpdateBody は投稿者本人のコメント本文を更新し、edited_atを設定する。
// WHERE句に投稿者IDを含めることで、所有権チェックと更新を単一文で行う。
func (r *PostgresCommentRepo) UpdateBody(ctx context.Context, id, userID, body string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET body = $1, edited_at = now() WHERE id = $2 AND user_id = $3`,
		body, id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// Delete は投稿者本人のコメントを削除する。
func (r *PostgresCommentRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
