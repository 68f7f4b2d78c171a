package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LozFunk/game-trackr/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger        *slog.Logger
	SessionFinder middleware.SessionFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig
	HTTPMetrics   middleware.HTTPStatusRecorder

	// ビュー
	View ViewRenderer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ゲームカタログ
	Catalog GameCatalogInterface

	// ライブラリ
	LibraryService LibraryServiceInterface
	LibraryViewer  LibraryViewerInterface

	// コメント
	CommentService CommentServiceInterface
	CommentLister  CommentListerInterface

	// メトリクス
	LoginMetrics   LoginMetrics
	CommentMetrics CommentMetrics
	MetricsHandler http.Handler
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → Session → CSRF → RateLimit(General)
//
// ログイン・登録のPOSTには総当たり対策の専用レート制限を追加する。
// /healthと/metricsはアプリケーションのミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := NewAuthHandler(deps.AuthService, deps.View, deps.LoginMetrics, deps.AuthConfig)
	pageHandler := NewPageHandler(deps.View, deps.AuthService, deps.Catalog, deps.LibraryViewer, deps.CommentLister)
	libraryHandler := NewLibraryHandler(deps.LibraryService)
	commentHandler := NewCommentHandler(deps.CommentService, deps.CommentMetrics)

	// --- 運用系ルート（ミドルウェアチェーンの外） ---

	r.Get("/health", healthHandler)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- アプリケーションルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		if deps.HTTPMetrics != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
		}
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 公開ページ
		r.Get("/", pageHandler.Home)
		r.Get("/games", pageHandler.Games)
		r.Get("/game/{id}", pageHandler.GameDetail)

		// 認証フロー
		r.Get("/register", authHandler.RegisterForm)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/register", authHandler.Register)
		r.Get("/login", authHandler.LoginForm)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Get("/auth/google", authHandler.GoogleLogin)
		r.Get("/auth/google/callback", authHandler.GoogleCallback)

		// 認証が必要なルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware())

			r.Get("/profile", pageHandler.Profile)

			r.Post("/library/add", libraryHandler.Add)
			r.Post("/library/remove", libraryHandler.Remove)

			r.Post("/game/{id}/comments", commentHandler.Create)
			r.Post("/comments/{id}/edit", commentHandler.Edit)
			r.Post("/comments/{id}/delete", commentHandler.Delete)
		})
	})

	return r
}

// healthHandler はヘルスチェックエンドポイント。
// GET /health
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
