// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/LozFunk/game-trackr/internal/auth"
	"github.com/LozFunk/game-trackr/internal/comment"
	"github.com/LozFunk/game-trackr/internal/config"
	"github.com/LozFunk/game-trackr/internal/database"
	"github.com/LozFunk/game-trackr/internal/handler"
	"github.com/LozFunk/game-trackr/internal/igdb"
	"github.com/LozFunk/game-trackr/internal/library"
	"github.com/LozFunk/game-trackr/internal/logger"
	"github.com/LozFunk/game-trackr/internal/metrics"
	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/repository"
	"github.com/LozFunk/game-trackr/internal/security"
	"github.com/LozFunk/game-trackr/internal/view"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はWebサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// 期限切れセッションのクリーンアップジョブをバックグラウンドで実行する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	libraryRepo := repository.NewPostgresLibraryRepo(db)
	commentRepo := repository.NewPostgresCommentRepo(db)

	// 3. セキュリティサービスの初期化
	egressGuard := security.NewEgressGuard()
	sanitizer := security.NewCommentSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. IGDBクライアントの初期化
	// 内部ネットワーク遮断クライアントにレイテンシ計測を重ねる
	igdbHTTP := egressGuard.NewSafeClient(cfg.IGDBTimeout)
	igdbHTTP.Transport = collector.InstrumentIGDBTransport(igdbHTTP.Transport)
	igdbClient, err := igdb.NewClient(igdbHTTP, slog.Default(), igdb.Config{
		ClientID:     cfg.IGDBClientID,
		ClientSecret: cfg.IGDBClientSecret,
		ValidateURL:  egressGuard.ValidateURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize IGDB client: %w", err)
	}

	// 6. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	libraryService := library.NewService(libraryRepo)
	commentService := comment.NewService(commentRepo, userRepo, sanitizer)

	// 7. ビューの初期化
	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize view renderer: %w", err)
	}

	// 8. ルーターの構築
	// configのレート制限はreq/min単位なのでreq/secに変換する
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.LoginRate = rate.Limit(float64(cfg.RateLimitLogin) / 60.0)
	rateLimiterCfg.LoginBurst = cfg.RateLimitLogin
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:        slog.Default(),
		SessionFinder: sessionRepo,
		RateLimiter:   rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		HTTPMetrics: collector,

		View: renderer,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		Catalog: igdbClient,

		LibraryService: libraryService,
		LibraryViewer:  libraryService,

		CommentService: commentService,
		CommentLister:  commentService,

		LoginMetrics:   collector,
		CommentMetrics: collector,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 9. セッションクリーンアップジョブの起動
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go runSessionCleanup(cleanupCtx, sessionRepo, collector, cfg.SessionCleanupInterval)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// sessionCleaner は期限切れセッションの削除インターフェース。
type sessionCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// sessionMetrics は削除セッション数のメトリクス記録インターフェース。
type sessionMetrics interface {
	RecordSessionsDeleted(count int64)
}

// runSessionCleanup は期限切れセッションを定期的に削除する。
// 起動直後に1回実行し、以降はinterval間隔で実行する。
func runSessionCleanup(ctx context.Context, cleaner sessionCleaner, recorder sessionMetrics, interval time.Duration) {
	cleanup := func() {
		count, err := cleaner.DeleteExpired(ctx)
		if err != nil {
			slog.Error("session cleanup failed", slog.String("error", err.Error()))
			return
		}
		recorder.RecordSessionsDeleted(count)
		if count > 0 {
			slog.Info("expired sessions deleted", slog.Int64("count", count))
		}
	}

	cleanup()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
