package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/infectados/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorsには利用者向けメッセージを検出順に列挙する。
type ErrorResponseBody struct {
	Code     string   `json:"code"`
	Category string   `json:"category"`
	Errors   []string `json:"errors"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	messages := apiErr.Messages
	if messages == nil {
		messages = []string{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Errors:   messages,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、利用者には一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError(nil))
}
