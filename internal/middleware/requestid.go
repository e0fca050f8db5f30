package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダー名。
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

var stateContextKey = contextKey("request_state")

// requestState はリクエスト単位で内側のミドルウェアから外側へ伝える情報。
type requestState struct {
	id    string
	login string
}

func stateFromContext(ctx context.Context) *requestState {
	st, _ := ctx.Value(stateContextKey).(*requestState)
	return st
}

// NewRequestIDMiddleware はリクエストIDを付与するミドルウェアを返す。
// クライアントが妥当なX-Request-IDを送った場合はそれを引き継ぎ、なければUUIDを生成する。
// IDはレスポンスヘッダーにも設定する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), stateContextKey, &requestState{id: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はリクエストIDを返す。ミドルウェアを通過していない場合は空文字列。
func RequestIDFromContext(ctx context.Context) string {
	if st := stateFromContext(ctx); st != nil {
		return st.id
	}
	return ""
}
