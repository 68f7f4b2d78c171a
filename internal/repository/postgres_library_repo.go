package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LozFunk/game-trackr/internal/model"
)

// PostgresLibraryRepo はPostgreSQLを使用したライブラリリポジトリ。
type PostgresLibraryRepo struct {
	db *sql.DB
}

// NewPostgresLibraryRepo はPostgresLibraryRepoを生成する。
func NewPostgresLibraryRepo(db *sql.DB) *PostgresLibraryRepo {
	return &PostgresLibraryRepo{db: db}
}

// Add はライブラリエントリを追加する。
// (user_id, game_id) の一意制約に衝突した場合はON CONFLICT DO NOTHINGで
// 何もせず成功する。チェックと挿入が単一文のためレースは発生しない。
func (r *PostgresLibraryRepo) Add(ctx context.Context, entry *model.LibraryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO library_entries (user_id, game_id, game_name, cover_url, added_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, game_id) DO NOTHING`,
		entry.UserID, entry.GameID, entry.GameName, entry.CoverURL, entry.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add library entry: %w", err)
	}
	return nil
}

// Remove は指定ユーザー・ゲームのエントリを削除する。存在しない場合も成功とする。
func (r *PostgresLibraryRepo) Remove(ctx context.Context, userID string, gameID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_id = $1 AND game_id = $2`,
		userID, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove library entry: %w", err)
	}
	return nil
}

// Exists は指定ユーザーのライブラリにゲームが含まれるかを返す。
func (r *PostgresLibraryRepo) Exists(ctx context.Context, userID string, gameID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM library_entries WHERE user_id = $1 AND game_id = $2)`,
		userID, gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check library entry: %w", err)
	}
	return exists, nil
}

// ListByUserID はユーザーのライブラリを追加が新しい順で返す。
func (r *PostgresLibraryRepo) ListByUserID(ctx context.Context, userID string) ([]*model.LibraryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, game_id, game_name, cover_url, added_at
		 FROM library_entries
		 WHERE user_id = $1
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LibraryEntry
	for rows.Next() {
		entry := &model.LibraryEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.GameID, &entry.GameName, &entry.CoverURL, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library entries: %w", err)
	}

	return entries, nil
}

// compile-time interface check
var _ LibraryRepository = (*PostgresLibraryRepo)(nil)
