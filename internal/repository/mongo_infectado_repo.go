package repository

import (
	"context"

	"github.com/hitoshi/infectados/internal/model"
)

// MongoInfectadoRepo はMongoDBを使用した感染者レコードリポジトリ。
type MongoInfectadoRepo struct {
	gw *Gateway[infectadoDocument]
}

var _ InfectadoRepository = (*MongoInfectadoRepo)(nil)

// NewMongoInfectadoRepo はMongoInfectadoRepoを生成する。recorderはnilでもよい。
func NewMongoInfectadoRepo(coll Collection, recorder OperationRecorder) *MongoInfectadoRepo {
	return &MongoInfectadoRepo{gw: NewGateway[infectadoDocument](coll, recorder)}
}

// Insert はレコードを新規作成する。引数のレコードは変更しない。
func (r *MongoInfectadoRepo) Insert(ctx context.Context, infectado *model.Infectado) (*model.Infectado, error) {
	id, err := r.gw.Insert(ctx, toInfectadoDocument(infectado))
	if err != nil {
		return nil, err
	}

	created := *infectado
	created.ID = id
	return &created, nil
}

// Replace はinfectado.IDのレコードを置き換える。
func (r *MongoInfectadoRepo) Replace(ctx context.Context, infectado *model.Infectado) (int64, error) {
	return r.gw.Replace(ctx, infectado.ID, toInfectadoDocument(infectado))
}

// Delete は指定IDのレコードを削除する。
func (r *MongoInfectadoRepo) Delete(ctx context.Context, id string) (int64, error) {
	return r.gw.Delete(ctx, id)
}

// FindAll は全レコードを返す。
func (r *MongoInfectadoRepo) FindAll(ctx context.Context) ([]*model.Infectado, error) {
	docs, err := r.gw.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Infectado, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toModel())
	}
	return result, nil
}

// FindByID は指定IDのレコードを返す。見つからない場合はnilを返す。
func (r *MongoInfectadoRepo) FindByID(ctx context.Context, id string) (*model.Infectado, error) {
	doc, err := r.gw.FindByID(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toModel(), nil
}
