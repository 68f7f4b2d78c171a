// Package comment はゲームページのコメント管理のドメインロジックを提供する。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/LozFunk/game-trackr/internal/model"
	"github.com/LozFunk/game-trackr/internal/repository"
)

// maxBodyLength はコメント本文の最大文字数（トリム後）。
const maxBodyLength = 1000

// Sanitizer はコメント本文のサニタイズ機能のインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// Service はコメント管理のサービス層。
// 本文の検証・サニタイズと、投稿者本人のみに許可される編集・削除を提供する。
type Service struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	sanitizer   Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(commentRepo repository.CommentRepository, userRepo repository.UserRepository, sanitizer Sanitizer) *Service {
	return &Service{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		sanitizer:   sanitizer,
	}
}

// Add はコメントを投稿する。
// 本文はトリム後1〜1000文字であることを検証し、サニタイズして保存する。
// 投稿時点のユーザー名を非正規化して保持する。
func (s *Service) Add(ctx context.Context, gameID int64, userID, body string) (*model.Comment, error) {
	cleaned, err := s.validateBody(body)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		GameID:    gameID,
		UserID:    userID,
		Username:  user.Username,
		Body:      cleaned,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	slog.Info("comment created",
		slog.String("comment_id", comment.ID),
		slog.Int64("game_id", gameID),
		slog.String("user_id", userID),
	)
	return comment, nil
}

// Edit はコメント本文を更新し、edited_atを設定する。
// 所有権チェックと更新はWHERE句で単一文として実行する。
// 更新行数が0の場合、コメントが存在しないのか他人のものかは区別せず
// 単一の権限エラーを返す（存在情報の漏洩を避けるため）。
// 戻り値はリダイレクト先決定用のゲームID。
func (s *Service) Edit(ctx context.Context, commentID, userID, body string) (int64, error) {
	cleaned, err := s.validateBody(body)
	if err != nil {
		return 0, err
	}

	existing, err := s.commentRepo.FindByIDAndUser(ctx, commentID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to find comment: %w", err)
	}
	if existing == nil {
		return 0, model.NewCommentForbiddenError()
	}

	affected, err := s.commentRepo.UpdateBody(ctx, commentID, userID, cleaned)
	if err != nil {
		return 0, fmt.Errorf("failed to update comment: %w", err)
	}
	if affected == 0 {
		// チェックと更新の間に削除されたケース。更新は0行に終わるだけなので
		// 所有権チェックと同じ失敗として扱う。
		return 0, model.NewCommentForbiddenError()
	}

	slog.Info("comment edited",
		slog.String("comment_id", commentID),
		slog.String("user_id", userID),
	)
	return existing.GameID, nil
}

// Delete はコメントを削除する。Edit同様、存在しない場合と他人のコメントの
// 場合は単一の権限エラーに畳み込む。戻り値はリダイレクト先決定用のゲームID。
func (s *Service) Delete(ctx context.Context, commentID, userID string) (int64, error) {
	existing, err := s.commentRepo.FindByIDAndUser(ctx, commentID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to find comment: %w", err)
	}
	if existing == nil {
		return 0, model.NewCommentForbiddenError()
	}

	affected, err := s.commentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	if affected == 0 {
		return 0, model.NewCommentForbiddenError()
	}

	slog.Info("comment deleted",
		slog.String("comment_id", commentID),
		slog.String("user_id", userID),
	)
	return existing.GameID, nil
}

// ListForGame はゲームのコメントを作成が新しい順で返す。
func (s *Service) ListForGame(ctx context.Context, gameID int64) ([]*model.Comment, error) {
	comments, err := s.commentRepo.ListByGameID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// validateBody は本文をサニタイズ・トリムし、1〜1000文字であることを検証する。
func (s *Service) validateBody(body string) (string, error) {
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(body))
	if cleaned == "" {
		return "", model.NewValidationError("コメント本文を入力してください。")
	}
	if utf8.RuneCountInString(cleaned) > maxBodyLength {
		return "", model.NewValidationError(fmt.Sprintf("コメントは%d文字以内で入力してください。", maxBodyLength))
	}
	return cleaned, nil
}
