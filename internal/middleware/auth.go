// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/infectados/internal/auth"
	"github.com/hitoshi/infectados/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// loginContextKey はリクエストコンテキストに認証済みloginを格納するためのキー。
var loginContextKey = contextKey("login")

// TokenValidator はアクセストークンの検証に必要なインターフェース。
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 認証済みloginをリクエストコンテキストに注入する。
// トークンがない、または無効な場合は401 Unauthorizedを返す。
func NewAuthMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				level := slog.LevelInfo
				if !errors.Is(err, auth.ErrTokenExpired) && !errors.Is(err, auth.ErrInvalidToken) {
					level = slog.LevelError
				}
				slog.Log(r.Context(), level, "token rejected",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w)
				return
			}

			ctx := ContextWithLogin(r.Context(), claims.Login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからトークンを取り出す。スキーム名は大文字小文字を区別しない。
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="infectados"`)
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// LoginFromContext はリクエストコンテキストから認証済みloginを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func LoginFromContext(ctx context.Context) (string, error) {
	login, ok := ctx.Value(loginContextKey).(string)
	if !ok || login == "" {
		return "", errors.New("login not found in context")
	}
	return login, nil
}

// ContextWithLogin はコンテキストにloginを注入する。
// リクエストIDミドルウェアを通過している場合は、外側のログ出力にも反映される。
func ContextWithLogin(ctx context.Context, login string) context.Context {
	if st := stateFromContext(ctx); st != nil {
		st.login = login
	}
	return context.WithValue(ctx, loginContextKey, login)
}
