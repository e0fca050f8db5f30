package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/infectados/internal/usuario"
	"github.com/hitoshi/infectados/internal/validation"
)

// UsuarioServiceInterface はアカウントサービスのインターフェース。
type UsuarioServiceInterface interface {
	Register(ctx context.Context, in validation.UsuarioInput) (string, error)
	Authenticate(ctx context.Context, in validation.UsuarioInput) (*usuario.AuthResult, error)
}

// UsuarioHandler はアカウント登録・認証のHTTPハンドラ。
type UsuarioHandler struct {
	service UsuarioServiceInterface
}

// NewUsuarioHandler はUsuarioHandlerを生成する。
func NewUsuarioHandler(service UsuarioServiceInterface) *UsuarioHandler {
	return &UsuarioHandler{service: service}
}

type authResponse struct {
	Login string `json:"login"`
	Token string `json:"token"`
}

// Inserir はアカウント登録を処理する。登録内容はレスポンスに含めない。
// POST /api/usuario/inserir
func (h *UsuarioHandler) Inserir(w http.ResponseWriter, r *http.Request) {
	var in validation.UsuarioInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidRequest(w)
		return
	}

	message, err := h.service.Register(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: message})
}

// Autenticar は認証を処理し、発行したトークンを返す。
// POST /api/usuario/autenticar
func (h *UsuarioHandler) Autenticar(w http.ResponseWriter, r *http.Request) {
	var in validation.UsuarioInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidRequest(w)
		return
	}

	result, err := h.service.Authenticate(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Login: result.Login, Token: result.Token})
}
