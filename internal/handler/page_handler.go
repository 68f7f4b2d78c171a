package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LozFunk/game-trackr/internal/igdb"
	"github.com/LozFunk/game-trackr/internal/library"
	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/model"
)

// gamesPageLimit は一覧ページの1ページあたりの件数。
// IGDB APIのデフォルト上限未満に収まる値を使う。
const gamesPageLimit = 49

// GameCatalogInterface はゲームメタデータ取得のインターフェース。
type GameCatalogInterface interface {
	ListGames(ctx context.Context, page, limit int, search string) ([]igdb.GameSummary, error)
	GetGameByID(ctx context.Context, gameID int64) (*igdb.Game, error)
}

// LibraryViewerInterface はページ描画が必要とするライブラリ参照のインターフェース。
type LibraryViewerInterface interface {
	List(ctx context.Context, userID string) ([]*model.LibraryEntry, error)
	Contains(ctx context.Context, userID string, gameID int64) (bool, error)
}

// CommentListerInterface はゲームごとのコメント一覧取得のインターフェース。
type CommentListerInterface interface {
	ListForGame(ctx context.Context, gameID int64) ([]*model.Comment, error)
}

// PageHandler は画面表示系のHTTPハンドラー。
type PageHandler struct {
	view     ViewRenderer
	users    CurrentUserFinder
	catalog  GameCatalogInterface
	library  LibraryViewerInterface
	comments CommentListerInterface
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(
	view ViewRenderer,
	users CurrentUserFinder,
	catalog GameCatalogInterface,
	library LibraryViewerInterface,
	comments CommentListerInterface,
) *PageHandler {
	return &PageHandler{
		view:     view,
		users:    users,
		catalog:  catalog,
		library:  library,
		comments: comments,
	}
}

// Home はトップページを表示する。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := struct {
		basePage
	}{
		basePage: newBasePage(r, h.users),
	}
	renderPage(w, h.view, "home", data)
}

// Games はゲーム一覧ページを表示する。
// GET /games?page=N&search=xxx
func (h *PageHandler) Games(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	search := r.URL.Query().Get("search")

	games, err := h.catalog.ListGames(r.Context(), page, gamesPageLimit, search)
	if err != nil {
		serverError(w, "failed to list games", err)
		return
	}

	data := struct {
		basePage
		Games   []igdb.GameSummary
		Page    int
		Search  string
		HasNext bool
	}{
		basePage: newBasePage(r, h.users),
		Games:    games,
		Page:     page,
		Search:   search,
		HasNext:  len(games) == gamesPageLimit,
	}
	renderPage(w, h.view, "games", data)
}

// GameDetail はゲーム詳細ページを表示する。
// コメント一覧と、ログイン中の場合はライブラリ所有状態も併せて表示する。
// GET /game/{id}
func (h *PageHandler) GameDetail(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	game, err := h.catalog.GetGameByID(r.Context(), gameID)
	if err != nil {
		serverError(w, "failed to get game", err)
		return
	}
	if game == nil {
		http.NotFound(w, r)
		return
	}

	comments, err := h.comments.ListForGame(r.Context(), gameID)
	if err != nil {
		serverError(w, "failed to list comments", err)
		return
	}

	base := newBasePage(r, h.users)
	base.Message = r.URL.Query().Get("message")

	inLibrary := false
	if base.User != nil {
		inLibrary, err = h.library.Contains(r.Context(), base.User.ID, gameID)
		if err != nil {
			serverError(w, "failed to check library", err)
			return
		}
	}

	var coverURL, coverRawURL string
	if game.Cover != nil {
		coverRawURL = game.Cover.URL
		coverURL = library.NormalizeCoverURL(game.Cover.URL)
	}

	data := struct {
		basePage
		Game        *igdb.Game
		CoverURL    string
		CoverRawURL string
		InLibrary   bool
		Comments    []*model.Comment
	}{
		basePage:    base,
		Game:        game,
		CoverURL:    coverURL,
		CoverRawURL: coverRawURL,
		InLibrary:   inLibrary,
		Comments:    comments,
	}
	renderPage(w, h.view, "game", data)
}

// Profile はログインユーザーのライブラリページを表示する。
// GET /profile（要認証）
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	entries, err := h.library.List(r.Context(), userID)
	if err != nil {
		serverError(w, "failed to list library", err)
		return
	}

	base := newBasePage(r, h.users)
	if base.User == nil {
		// セッションはミドルウェアで検証済みだが、ユーザー解決に失敗した場合
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := struct {
		basePage
		Entries []*model.LibraryEntry
	}{
		basePage: base,
		Entries:  entries,
	}
	renderPage(w, h.view, "profile", data)
}
