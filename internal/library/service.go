// Package library はユーザーのゲームライブラリ管理のドメインロジックを提供する。
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LozFunk/game-trackr/internal/model"
	"github.com/LozFunk/game-trackr/internal/repository"
)

// Service はライブラリ管理のサービス層。
type Service struct {
	libraryRepo repository.LibraryRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(libraryRepo repository.LibraryRepository) *Service {
	return &Service{libraryRepo: libraryRepo}
}

// AddEntry はゲームをユーザーのライブラリに追加する。
// カバー画像URLは保存時に高解像度版に正規化する。
// 既に追加済みの場合は何もせず成功する（重複追加はエラーではない）。
func (s *Service) AddEntry(ctx context.Context, userID string, gameID int64, gameName, coverURL string) error {
	entry := &model.LibraryEntry{
		UserID:   userID,
		GameID:   gameID,
		GameName: gameName,
		CoverURL: NormalizeCoverURL(coverURL),
		AddedAt:  time.Now(),
	}

	if err := s.libraryRepo.Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to add library entry: %w", err)
	}

	slog.Info("game added to library",
		slog.String("user_id", userID),
		slog.Int64("game_id", gameID),
	)
	return nil
}

// RemoveEntry はゲームをユーザーのライブラリから削除する。
// エントリが存在しない場合も成功とする。
func (s *Service) RemoveEntry(ctx context.Context, userID string, gameID int64) error {
	if err := s.libraryRepo.Remove(ctx, userID, gameID); err != nil {
		return fmt.Errorf("failed to remove library entry: %w", err)
	}

	slog.Info("game removed from library",
		slog.String("user_id", userID),
		slog.Int64("game_id", gameID),
	)
	return nil
}

// List はユーザーのライブラリを追加が新しい順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.LibraryEntry, error) {
	entries, err := s.libraryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return entries, nil
}

// Contains は指定ゲームがユーザーのライブラリに含まれるかを返す。
func (s *Service) Contains(ctx context.Context, userID string, gameID int64) (bool, error) {
	exists, err := s.libraryRepo.Exists(ctx, userID, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to check library: %w", err)
	}
	return exists, nil
}

// NormalizeCoverURL はIGDBのサムネイルURLを高解像度のカバー画像URLに書き換える。
// 既知の低解像度パターン（t_thumb）のみを対象とし、それ以外はそのまま返す。
func NormalizeCoverURL(coverURL string) string {
	return strings.Replace(coverURL, "t_thumb", "t_cover_big", 1)
}
