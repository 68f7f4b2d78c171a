package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LozFunk/game-trackr/internal/auth"
	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (auth.Result, error)
	CreateSession(ctx context.Context, userID string) (*model.Session, error)
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// LoginMetrics はログイン試行結果のメトリクス記録インターフェース。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウト・Google OAuthのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	view    ViewRenderer
	metrics LoginMetrics
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, view ViewRenderer, metrics LoginMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		view:    view,
		metrics: metrics,
		config:  config,
	}
}

// registerPage は登録フォームのテンプレートデータ。
// 失敗時の再表示で入力済みの値を保持する（パスワードは保持しない）。
type registerPage struct {
	basePage
	Username string
	Email    string
}

// RegisterForm は登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(r, h.service); user != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderPage(w, h.view, "register", registerPage{basePage: newBasePage(r, h.service)})
}

// Register はローカルアカウントを作成してログイン状態にする。
// 検証エラーはフォームを再表示して入力値とメッセージを返す。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	rerender := func(message string) {
		data := registerPage{
			basePage: basePage{
				CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
				Message:   message,
			},
			Username: username,
			Email:    email,
		}
		renderPage(w, h.view, "register", data)
	}

	if password != confirm {
		rerender("パスワードが一致しません。")
		return
	}

	user, err := h.service.Register(r.Context(), username, email, password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			rerender(apiErr.Message)
			return
		}
		serverError(w, "failed to register user", err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), user.ID)
	if err != nil {
		serverError(w, "failed to create session", err)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loginPage はログインフォームのテンプレートデータ。
type loginPage struct {
	basePage
}

// LoginForm はログインフォームを表示する。
// 認証失敗後のリダイレクト（?failed=1）では汎用メッセージを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(r, h.service); user != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	base := newBasePage(r, h.service)
	if r.URL.Query().Get("failed") != "" {
		base.Message = "ユーザー名またはパスワードが正しくありません。"
	}
	renderPage(w, h.view, "login", loginPage{basePage: base})
}

// Login はユーザー名とパスワードでログインする。
// 失敗理由はログとメトリクスにのみ残し、ユーザーには単一の汎用メッセージを返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	result, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		serverError(w, "failed to authenticate", err)
		return
	}
	if !result.OK() {
		h.metrics.RecordLoginFailure()
		slog.Warn("login failed",
			slog.String("username", username),
			slog.String("reason", string(result.Reason)),
		)
		http.Redirect(w, r, "/login?failed=1", http.StatusSeeOther)
		return
	}

	session, err := h.service.CreateSession(r.Context(), result.User.ID)
	if err != nil {
		serverError(w, "failed to create session", err)
		return
	}

	h.metrics.RecordLoginSuccess()
	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄してトップページへリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GoogleLogin はGoogle OAuthフローを開始する。
// GET /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		serverError(w, "failed to generate oauth state", err)
		return
	}

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("query_state", state),
		)
		http.Error(w, "invalid state parameter", http.StatusBadRequest)
		return
	}

	// stateクッキーを削除
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	// 3. 認証処理
	session, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// 4. セッションCookieを設定してトップページへ
	h.metrics.RecordLoginSuccess()
	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookie はセッションCookie（HTTP Only）を設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
