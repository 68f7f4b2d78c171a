package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/LozFunk/game-trackr/internal/middleware"
)

// LibraryServiceInterface はライブラリハンドラーが必要とするサービスインターフェース。
type LibraryServiceInterface interface {
	AddEntry(ctx context.Context, userID string, gameID int64, gameName, coverURL string) error
	RemoveEntry(ctx context.Context, userID string, gameID int64) error
}

// LibraryHandler はライブラリ追加・削除のHTTPハンドラー。
type LibraryHandler struct {
	service LibraryServiceInterface
}

// NewLibraryHandler はLibraryHandlerを生成する。
func NewLibraryHandler(service LibraryServiceInterface) *LibraryHandler {
	return &LibraryHandler{service: service}
}

// Add はゲームをライブラリに追加し、元のページへリダイレクトする。
// 追加済みのゲームを再度追加しても何も起きない。
// POST /library/add（要認証）
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	gameID, err := strconv.ParseInt(r.PostFormValue("game_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid game ID", http.StatusBadRequest)
		return
	}
	gameName := r.PostFormValue("game_name")
	if gameName == "" {
		http.Error(w, "game name is required", http.StatusBadRequest)
		return
	}

	if err := h.service.AddEntry(r.Context(), userID, gameID, gameName, r.PostFormValue("cover_url")); err != nil {
		serverError(w, "failed to add library entry", err)
		return
	}

	http.Redirect(w, r, backURL(r, "/game/"+strconv.FormatInt(gameID, 10)), http.StatusSeeOther)
}

// Remove はゲームをライブラリから削除し、元のページへリダイレクトする。
// 存在しないエントリの削除も成功として扱う。
// POST /library/remove（要認証）
func (h *LibraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	gameID, err := strconv.ParseInt(r.PostFormValue("game_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid game ID", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveEntry(r.Context(), userID, gameID); err != nil {
		serverError(w, "failed to remove library entry", err)
		return
	}

	http.Redirect(w, r, backURL(r, "/profile"), http.StatusSeeOther)
}
