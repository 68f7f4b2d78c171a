// Package igdb はIGDBゲームメタデータAPIのクライアントを提供する。
// Twitchのclient credentialsフローによるトークン取得・キャッシュと、
// ゲーム一覧・詳細の取得を含む。
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// defaultTokenURL はTwitchのclient credentialsトークンエンドポイント。
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	// defaultGamesURL はIGDBのゲーム検索エンドポイント。
	defaultGamesURL = "https://api.igdb.com/v4/games"

	// tokenExpiryMargin はトークンを期限より早めに失効扱いにする余裕時間。
	tokenExpiryMargin = 60 * time.Second
)

// Config はIGDBクライアントの設定。
type Config struct {
	ClientID     string
	ClientSecret string

	// テスト用にオーバーライド可能なURL
	TokenURL string
	GamesURL string

	// ValidateURL が設定されている場合、構築時に両エンドポイントURLを検証する。
	// エンドポイントは差し替え可能なため、内部ネットワークを指す設定ミスを
	// リクエスト発行前に検出する。
	ValidateURL func(rawURL string) error
}

// Client はIGDB APIのクライアント。
// アクセストークンをメモリにキャッシュし、期限切れ時のみ再取得する。
// 並行リクエストから安全に使用できる。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient はClientの新しいインスタンスを生成する。
// Config.ValidateURLが設定されている場合、エンドポイントURLの検証に失敗すると
// エラーを返す。
func NewClient(httpClient *http.Client, logger *slog.Logger, config Config) (*Client, error) {
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.GamesURL == "" {
		config.GamesURL = defaultGamesURL
	}
	if config.ValidateURL != nil {
		if err := config.ValidateURL(config.TokenURL); err != nil {
			return nil, fmt.Errorf("invalid token URL: %w", err)
		}
		if err := config.ValidateURL(config.GamesURL); err != nil {
			return nil, fmt.Errorf("invalid games URL: %w", err)
		}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}, nil
}

// Cover はゲームのカバー画像を表す。
type Cover struct {
	URL string `json:"url"`
}

// GameSummary は一覧表示用のゲーム情報を表す。
type GameSummary struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Cover            *Cover  `json:"cover,omitempty"`
	FirstReleaseDate int64   `json:"first_release_date,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
}

// Game は詳細ページ用のゲーム情報を表す。
type Game struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Summary           string            `json:"summary,omitempty"`
	Storyline         string            `json:"storyline,omitempty"`
	Rating            float64           `json:"rating,omitempty"`
	TotalRating       float64           `json:"total_rating,omitempty"`
	RatingCount       int               `json:"rating_count,omitempty"`
	FirstReleaseDate  int64             `json:"first_release_date,omitempty"`
	Genres            []Named           `json:"genres,omitempty"`
	Cover             *Cover            `json:"cover,omitempty"`
	Screenshots       []Cover           `json:"screenshots,omitempty"`
	Platforms         []Named           `json:"platforms,omitempty"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies,omitempty"`
}

// Named は名前のみを持つ参照データ（ジャンル、プラットフォーム等）を表す。
type Named struct {
	Name string `json:"name"`
}

// InvolvedCompany はゲームに関与した企業を表す。
type InvolvedCompany struct {
	Company Named `json:"company"`
}

// ListGames はゲーム一覧を取得する。
// pageは1始まり。searchが空でない場合は検索クエリとして使用する。
func (c *Client) ListGames(ctx context.Context, page, limit int, search string) ([]GameSummary, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var sb strings.Builder
	if search != "" {
		fmt.Fprintf(&sb, "search %q; ", search)
	}
	fmt.Fprintf(&sb, "fields name,cover.url,first_release_date,rating; limit %d; offset %d;", limit, offset)

	var games []GameSummary
	if err := c.query(ctx, sb.String(), &games); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// GetGameByID は指定IDのゲーム詳細を取得する。見つからない場合はnilを返す。
func (c *Client) GetGameByID(ctx context.Context, gameID int64) (*Game, error) {
	query := fmt.Sprintf(
		`fields id, name, summary, storyline, rating, total_rating, rating_count,
		 first_release_date, genres.name, cover.url, screenshots.url,
		 platforms.name, involved_companies.company.name;
		 where id = %d;`, gameID)

	var games []Game
	if err := c.query(ctx, query, &games); err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if len(games) == 0 {
		return nil, nil
	}
	return &games[0], nil
}

// query はApicalypseクエリをゲームエンドポイントにPOSTし、結果をデコードする。
func (c *Client) query(ctx context.Context, query string, out any) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GamesURL, strings.NewReader(query))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.config.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("IGDB request failed",
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("IGDB returned error status",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("IGDB returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse IGDB response: %w", err)
	}

	return nil
}

// tokenResponse はTwitchトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// getToken はキャッシュ済みアクセストークンを返す。
// 未取得または期限切れ間近の場合のみclient credentialsフローで再取得する。
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	data := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryMargin)

	c.logger.Info("IGDB access token refreshed",
		slog.Int("expires_in", tokenResp.ExpiresIn),
	)

	return c.accessToken, nil
}
