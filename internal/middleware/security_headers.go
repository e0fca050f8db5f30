package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// 応答にはトークンや個人データが含まれるため、キャッシュを禁止する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// NewProxyHeadersMiddleware はX-Forwarded-For等からクライアントアドレスを復元するミドルウェアを返す。
// 信頼できるリバースプロキシの背後でのみ有効にすること。
func NewProxyHeadersMiddleware() func(next http.Handler) http.Handler {
	return handlers.ProxyHeaders
}
