// Package infectado は感染者レコードの登録・更新・削除・参照のドメインロジックを提供する。
package infectado

import (
	"context"
	"log/slog"

	"github.com/hitoshi/infectados/internal/model"
	"github.com/hitoshi/infectados/internal/repository"
	"github.com/hitoshi/infectados/internal/validation"
)

// ストア障害時のメッセージ接頭辞
const (
	prefixCreate = "Erro ao cadastrar infectado: "
	prefixUpdate = "Erro ao atualizar infectado: "
	prefixDelete = "Erro ao excluir infectado: "
	prefixList   = "Erro ao obter infectados: "
	prefixGet    = "Erro ao obter infectado: "
)

// Service は感染者レコードのサービス層。
// ビジネス上の結果はすべて*model.APIErrorとして返し、ドライバのエラーをそのまま返すことはない。
type Service struct {
	repo repository.InfectadoRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.InfectadoRepository) *Service {
	return &Service{repo: repo}
}

// Create は入力を検証し、新しいレコードを登録する。
// 検証エラーがある場合はストアに書き込まない。
func (s *Service) Create(ctx context.Context, in validation.InfectadoInput) (*model.Infectado, error) {
	fields, violations := validation.ValidateInfectado(in)
	if len(violations) > 0 {
		return nil, model.NewValidationError(violations)
	}

	record := model.NewInfectado(fields.DataNascimento, fields.Sexo, fields.Latitude, fields.Longitude)
	created, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, persistenceFailure("insert", prefixCreate, err)
	}

	slog.Info("感染者レコードを登録しました", slog.String("id", created.ID))
	return created, nil
}

// Update は指定IDのレコードを入力内容で丸ごと置き換える。IDは変わらない。
func (s *Service) Update(ctx context.Context, id string, in validation.InfectadoInput) (*model.Infectado, error) {
	fields, violations := validation.ValidateInfectado(in)
	if len(violations) > 0 {
		return nil, model.NewValidationError(violations)
	}

	record := model.NewInfectadoWithID(id, fields.DataNascimento, fields.Sexo, fields.Latitude, fields.Longitude)
	matched, err := s.repo.Replace(ctx, record)
	if err != nil {
		return nil, persistenceFailure("replace", prefixUpdate, err)
	}
	if matched == 0 {
		return nil, model.NewInfectadoNotFoundError()
	}

	return record, nil
}

// Delete は指定IDのレコードを削除し、成功メッセージを返す。
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", persistenceFailure("delete", prefixDelete, err)
	}
	if deleted == 0 {
		return "", model.NewInfectadoNotFoundError()
	}

	slog.Info("感染者レコードを削除しました", slog.String("id", id))
	return model.MsgInfectadoExcluido, nil
}

// List は全レコードを返す。0件の場合は空スライスを返す。
func (s *Service) List(ctx context.Context) ([]*model.Infectado, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, persistenceFailure("find_all", prefixList, err)
	}
	if records == nil {
		records = []*model.Infectado{}
	}
	return records, nil
}

// Get は指定IDのレコードを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Infectado, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceFailure("find_by_id", prefixGet, err)
	}
	if record == nil {
		return nil, model.NewInfectadoNotFoundError()
	}
	return record, nil
}

func persistenceFailure(op, prefix string, err error) error {
	slog.Error("感染者レコードのストア操作でエラー",
		slog.String("operation", op),
		slog.Any("error", err),
	)
	return model.NewPersistenceError(prefix, err)
}
