package middleware

import "net/http"

// csp はこのアプリのContent-Security-Policy。
// レイアウトがインラインスタイルを使うためstyle-srcに'unsafe-inline'を含め、
// ゲームのカバー画像は外部CDNから配信されるためimg-srcでhttpsを許可する。
const csp = "default-src 'self'; img-src 'self' https:; style-src 'self' 'unsafe-inline'; form-action 'self'"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", csp)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			next.ServeHTTP(w, r)
		})
	}
}
