package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/LozFunk/game-trackr/internal/auth"
	"github.com/LozFunk/game-trackr/internal/middleware"
	"github.com/LozFunk/game-trackr/internal/model"
)

// --- モック定義 ---

type stubRenderer struct {
	lastView string
	lastData any
}

func (s *stubRenderer) Render(w io.Writer, name string, data any) error {
	s.lastView = name
	s.lastData = data
	fmt.Fprintf(w, "view:%s", name)
	return nil
}

var _ ViewRenderer = (*stubRenderer)(nil)

type mockAuthService struct {
	registerFn       func(ctx context.Context, username, email, password string) (*model.User, error)
	authenticateFn   func(ctx context.Context, username, password string) (auth.Result, error)
	createSessionFn  func(ctx context.Context, userID string) (*model.Session, error)
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, email, password)
	}
	return &model.User{ID: "new-user", Username: username, Email: email}, nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, username, password string) (auth.Result, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, username, password)
	}
	return auth.Result{}, nil
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, userID)
	}
	return &model.Session{ID: "session-1", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return &model.Session{ID: "session-1", UserID: "user-1"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

type mockLoginMetrics struct {
	successes int
	failures  int
}

func (m *mockLoginMetrics) RecordLoginSuccess() { m.successes++ }
func (m *mockLoginMetrics) RecordLoginFailure() { m.failures++ }

var _ LoginMetrics = (*mockLoginMetrics)(nil)

func newTestAuthHandler(service AuthServiceInterface) (*AuthHandler, *stubRenderer, *mockLoginMetrics) {
	view := &stubRenderer{}
	metrics := &mockLoginMetrics{}
	h := NewAuthHandler(service, view, metrics, AuthHandlerConfig{SessionMaxAge: 86400})
	return h, view, metrics
}

func postFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestRegister_PasswordMismatch_RerendersForm(t *testing.T) {
	h, view, _ := newTestAuthHandler(&mockAuthService{})

	form := url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"pw1"},
		"confirm_password": {"pw2"},
	}
	rec := httptest.NewRecorder()

	h.Register(rec, postFormRequest("/register", form))

	if view.lastView != "register" {
		t.Fatalf("rendered view = %q, want register", view.lastView)
	}

	data, ok := view.lastData.(registerPage)
	if !ok {
		t.Fatalf("unexpected data type %T", view.lastData)
	}
	if data.Message == "" {
		t.Error("expected mismatch message")
	}
	// 入力済みの値が保持されること
	if data.Username != "alice" || data.Email != "alice@example.com" {
		t.Errorf("form values not preserved: %+v", data)
	}
}

func TestRegister_DuplicateEmail_RerendersWithMessage(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (*model.User, error) {
			return nil, model.NewDuplicateEmailError()
		},
	}
	h, view, _ := newTestAuthHandler(service)

	form := url.Values{
		"username":         {"alice"},
		"email":            {"taken@example.com"},
		"password":         {"pw"},
		"confirm_password": {"pw"},
	}
	rec := httptest.NewRecorder()

	h.Register(rec, postFormRequest("/register", form))

	data, ok := view.lastData.(registerPage)
	if !ok {
		t.Fatalf("unexpected data type %T", view.lastData)
	}
	if !strings.Contains(data.Message, "既に登録") {
		t.Errorf("message = %q, want duplicate email message", data.Message)
	}
}

func TestRegister_Success_SetsSessionCookieAndRedirects(t *testing.T) {
	h, _, _ := newTestAuthHandler(&mockAuthService{})

	form := url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"pw"},
		"confirm_password": {"pw"},
	}
	rec := httptest.NewRecorder()

	h.Register(rec, postFormRequest("/register", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "session-1" {
		t.Errorf("cookie value = %q, want session-1", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HTTP only")
	}
}

func TestLogin_Failure_RedirectsWithGenericFlagAndRecordsMetric(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (auth.Result, error) {
			return auth.Result{Reason: auth.ReasonWrongPassword}, nil
		},
	}
	h, _, metrics := newTestAuthHandler(service)

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	rec := httptest.NewRecorder()

	h.Login(rec, postFormRequest("/login", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?failed=1" {
		t.Errorf("Location = %q, want /login?failed=1", loc)
	}
	if metrics.failures != 1 {
		t.Errorf("login failures recorded = %d, want 1", metrics.failures)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session cookie should be set on failure")
	}
}

func TestLogin_Success_SetsSessionCookieAndRedirects(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (auth.Result, error) {
			return auth.Result{User: &model.User{ID: "user-1", Username: username}}, nil
		},
	}
	h, _, metrics := newTestAuthHandler(service)

	form := url.Values{"username": {"alice"}, "password": {"correct"}}
	rec := httptest.NewRecorder()

	h.Login(rec, postFormRequest("/login", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected session cookie")
	}
	if metrics.successes != 1 {
		t.Errorf("login successes recorded = %d, want 1", metrics.successes)
	}
}

func TestLoginForm_FailedFlag_ShowsGenericMessage(t *testing.T) {
	h, view, _ := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/login?failed=1", nil)
	rec := httptest.NewRecorder()

	h.LoginForm(rec, req)

	data, ok := view.lastData.(loginPage)
	if !ok {
		t.Fatalf("unexpected data type %T", view.lastData)
	}
	if data.Message == "" {
		t.Error("expected generic failure message")
	}
	// メッセージがユーザー名の存在有無を漏らさないこと
	if strings.Contains(data.Message, "存在") {
		t.Errorf("message must not reveal account existence: %q", data.Message)
	}
}

func TestLoginForm_AlreadyLoggedIn_RedirectsHome(t *testing.T) {
	service := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Username: "alice"}, nil
		},
	}
	h, _, _ := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	rec := httptest.NewRecorder()

	h.LoginForm(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	loggedOut := ""
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h, _, _ := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if loggedOut != "session-1" {
		t.Errorf("logged out session = %q, want session-1", loggedOut)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected session cookie in response")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Errorf("cookie should be cleared, got value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestGoogleLogin_SetsStateCookieAndRedirects(t *testing.T) {
	h, _, _ := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()

	h.GoogleLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("expected oauth state cookie")
	}

	// リダイレクト先URLのstateとCookieのstateが一致すること
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "state="+stateCookie.Value) {
		t.Errorf("redirect URL %q should contain state %q", loc, stateCookie.Value)
	}
}

func TestGoogleCallback_StateMismatch_BadRequest(t *testing.T) {
	h, _, _ := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "legit"})
	rec := httptest.NewRecorder()

	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGoogleCallback_Success_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want auth-code", code)
			}
			return &model.Session{ID: "session-9", UserID: "user-1"}, nil
		},
	}
	h, _, metrics := newTestAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=st", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st"})
	rec := httptest.NewRecorder()

	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "session-9" {
		t.Errorf("session cookie = %+v, want session-9", cookie)
	}
	if metrics.successes != 1 {
		t.Errorf("login successes recorded = %d, want 1", metrics.successes)
	}
}

func TestGoogleCallback_MissingCode_BadRequest(t *testing.T) {
	h, _, _ := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=st", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st"})
	rec := httptest.NewRecorder()

	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
