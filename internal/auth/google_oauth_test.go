package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGoogleGetLoginURL_ContainsRequiredParams(t *testing.T) {
	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:    "client-123",
		RedirectURL: "http://localhost:8080/auth/google/callback",
	})

	loginURL := provider.GetLoginURL("state-xyz")

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("failed to parse login URL: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q, want %q", q.Get("client_id"), "client-123")
	}
	if q.Get("state") != "state-xyz" {
		t.Errorf("state = %q, want %q", q.Get("state"), "state-xyz")
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q, want %q", q.Get("response_type"), "code")
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("scope should contain email, got %q", q.Get("scope"))
	}
}

func TestExchangeCode_Success(t *testing.T) {
	// トークンエンドポイントのモック
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostFormValue("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want %q", got, "authorization_code")
		}
		if got := r.PostFormValue("code"); got != "auth-code-1" {
			t.Errorf("code = %q, want %q", got, "auth-code-1")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-abc","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	// ユーザー情報エンドポイントのモック
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer token-abc")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"google-sub-1","email":"user@example.com","name":"User Name"}`))
	}))
	defer userInfoServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "client-123",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
		TokenURL:     tokenServer.URL,
		UserInfoURL:  userInfoServer.URL,
	})

	info, err := provider.ExchangeCode(context.Background(), "auth-code-1")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if info.ProviderUserID != "google-sub-1" {
		t.Errorf("providerUserID = %q, want %q", info.ProviderUserID, "google-sub-1")
	}
	if info.Email != "user@example.com" {
		t.Errorf("email = %q, want %q", info.Email, "user@example.com")
	}
	if info.Name != "User Name" {
		t.Errorf("name = %q, want %q", info.Name, "User Name")
	}
}

func TestExchangeCode_TokenEndpointError(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		TokenURL: tokenServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("expected error for token endpoint failure")
	}
}

func TestExchangeCode_EmptyAccessToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer tokenServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		TokenURL: tokenServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error for empty access token")
	}
}

func TestExchangeCode_EmptySub(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-abc"}`))
	}))
	defer tokenServer.Close()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"user@example.com"}`))
	}))
	defer userInfoServer.Close()

	provider := NewGoogleOAuthProvider(GoogleOAuthConfig{
		TokenURL:    tokenServer.URL,
		UserInfoURL: userInfoServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error for missing sub")
	}
}
