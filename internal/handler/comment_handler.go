package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Add(ctx context.Context, gameID int64, userID, body string) (*model.Comment, error)
	Edit(ctx context.Context, commentID, userID, body string) (int64, error)
	Delete(ctx context.Context, commentID, userID string) (int64, error)
}

// CommentMetrics はコメント投稿のメトリクス記録インターフェース。
type CommentMetrics interface {
	RecordCommentCreated()
}

// CommentHandler はコメントの投稿・編集・削除のHTTPハンドラー。
// すべての操作後はゲーム詳細ページへリダイレクトする。
type CommentHandler struct {
	service CommentServiceInterface
	metrics CommentMetrics
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface, metrics CommentMetrics) *CommentHandler {
	return &CommentHandler{
		service: service,
		metrics: metrics,
	}
}

// Create はコメントを投稿する。
// POST /game/{id}/comments（要認証）
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid game ID", http.StatusBadRequest)
		return
	}

	gamePage := "/game/" + strconv.FormatInt(gameID, 10)

	if _, err := h.service.Add(r.Context(), gameID, userID, r.PostFormValue("body")); err != nil {
		h.handleCommentError(w, r, err, gamePage)
		return
	}

	h.metrics.RecordCommentCreated()
	http.Redirect(w, r, gamePage, http.StatusSeeOther)
}

// Edit はコメント本文を更新する。
// POST /comments/{id}/edit（要認証）
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	commentID := chi.URLParam(r, "id")
	gameID, err := h.service.Edit(r.Context(), commentID, userID, r.PostFormValue("body"))
	if err != nil {
		h.handleCommentError(w, r, err, backURL(r, "/games"))
		return
	}

	http.Redirect(w, r, "/game/"+strconv.FormatInt(gameID, 10), http.StatusSeeOther)
}

// Delete はコメントを削除する。
// POST /comments/{id}/delete（要認証）
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	commentID := chi.URLParam(r, "id")
	gameID, err := h.service.Delete(r.Context(), commentID, userID)
	if err != nil {
		h.handleCommentError(w, r, err, backURL(r, "/games"))
		return
	}

	http.Redirect(w, r, "/game/"+strconv.FormatInt(gameID, 10), http.StatusSeeOther)
}

// handleCommentError はコメント操作のエラーをフォームフローにマッピングする。
// 検証エラーは元のページへメッセージ付きでリダイレクトし、
// 権限エラーは403を返す。それ以外は内部エラーとして扱う。
func (h *CommentHandler) handleCommentError(w http.ResponseWriter, r *http.Request, err error, gamePage string) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeValidation:
			http.Redirect(w, r, gamePage+"?message="+url.QueryEscape(apiErr.Message), http.StatusSeeOther)
		case model.ErrCodeCommentForbidden:
			http.Error(w, apiErr.Message, http.StatusForbidden)
		default:
			http.Error(w, apiErr.Message, http.StatusBadRequest)
		}
		return
	}
	serverError(w, "comment operation failed", err)
}
