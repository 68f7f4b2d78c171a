// Package handler はHTTPハンドラーを提供する。
// 各ハンドラーはサービス層のインターフェースに依存し、HTML画面の描画と
// リダイレクトベースのフォームフローを担当する。
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/model"
)

// ViewRenderer はビューのレンダリングインターフェース。
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// CurrentUserFinder はセッションIDから現在のユーザーを解決するインターフェース。
type CurrentUserFinder interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// basePage は全ページ共通のテンプレートデータ。
// 各ページのデータ構造体に埋め込んで使う。
type basePage struct {
	User      *model.User
	CSRFToken string
	Message   string
}

// newBasePage はリクエストから共通テンプレートデータを構築する。
func newBasePage(r *http.Request, users CurrentUserFinder) basePage {
	return basePage{
		User:      currentUser(r, users),
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	}
}

// currentUser はセッションCookieから現在のユーザーを取得する。
// 未ログイン・期限切れ・解決失敗はすべてnil（未認証表示）として扱う。
func currentUser(r *http.Request, users CurrentUserFinder) *model.User {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	user, err := users.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to resolve current user",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return user
}

// renderPage はビューをレンダリングする。失敗時は500を返す。
func renderPage(w http.ResponseWriter, view ViewRenderer, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, name, data); err != nil {
		slog.Error("failed to render page",
			slog.String("view", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// serverError は内部エラーをログに記録して500を返す。
func serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// backURL はフォーム送信後のリダイレクト先をRefererから決める。
// Refererが無い場合はfallbackを使う。
func backURL(r *http.Request, fallback string) string {
	if ref := r.Header.Get("Referer"); ref != "" {
		return ref
	}
	return fallback
}
