package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/infectados/internal/model"
	"github.com/hitoshi/infectados/internal/validation"
)

// InfectadoServiceInterface は感染者レコードサービスのインターフェース。
type InfectadoServiceInterface interface {
	Create(ctx context.Context, in validation.InfectadoInput) (*model.Infectado, error)
	Update(ctx context.Context, id string, in validation.InfectadoInput) (*model.Infectado, error)
	Delete(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]*model.Infectado, error)
	Get(ctx context.Context, id string) (*model.Infectado, error)
}

// InfectadoHandler は感染者レコード関連のHTTPハンドラ。
type InfectadoHandler struct {
	service InfectadoServiceInterface
}

// NewInfectadoHandler はInfectadoHandlerを生成する。
func NewInfectadoHandler(service InfectadoServiceInterface) *InfectadoHandler {
	return &InfectadoHandler{service: service}
}

// geoPointResponse はGeoJSON Pointのレスポンス表現。
type geoPointResponse struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// infectadoResponse は感染者レコードのレスポンス。
type infectadoResponse struct {
	ID             string           `json:"id"`
	DataNascimento time.Time        `json:"dataNascimento"`
	Sexo           string           `json:"sexo"`
	Localizacao    geoPointResponse `json:"localizacao"`
}

func toInfectadoResponse(i *model.Infectado) infectadoResponse {
	return infectadoResponse{
		ID:             i.ID,
		DataNascimento: i.DataNascimento,
		Sexo:           i.Sexo,
		Localizacao: geoPointResponse{
			Type:        i.Localizacao.Type,
			Coordinates: i.Localizacao.Coordinates,
		},
	}
}

// Inserir は感染者レコードの登録を処理する。
// POST /api/infectados/inserir
func (h *InfectadoHandler) Inserir(w http.ResponseWriter, r *http.Request) {
	var in validation.InfectadoInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInfectadoResponse(created))
}

// Atualizar は感染者レコードの更新を処理する。
// PUT /api/infectados/atualizar/{id}
func (h *InfectadoHandler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in validation.InfectadoInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeInvalidRequest(w)
		return
	}

	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInfectadoResponse(updated))
}

// Excluir は感染者レコードの削除を処理する。
// DELETE /api/infectados/excluir/{id}
func (h *InfectadoHandler) Excluir(w http.ResponseWriter, r *http.Request) {
	message, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// Listar は全感染者レコードの一覧を返す。
// GET /api/infectados/listar
func (h *InfectadoHandler) Listar(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]infectadoResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toInfectadoResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Obter は指定IDの感染者レコードを返す。
// GET /api/infectados/obter/{id}
func (h *InfectadoHandler) Obter(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInfectadoResponse(record))
}
