package repository

import (
	"context"

	"github.com/hitoshi/infectados/internal/model"
)

// MongoUsuarioRepo はMongoDBを使用したアカウントリポジトリ。
type MongoUsuarioRepo struct {
	gw *Gateway[usuarioDocument]
}

var _ UsuarioRepository = (*MongoUsuarioRepo)(nil)

// NewMongoUsuarioRepo はMongoUsuarioRepoを生成する。recorderはnilでもよい。
func NewMongoUsuarioRepo(coll Collection, recorder OperationRecorder) *MongoUsuarioRepo {
	return &MongoUsuarioRepo{gw: NewGateway[usuarioDocument](coll, recorder)}
}

// Insert はアカウントを新規作成する。
func (r *MongoUsuarioRepo) Insert(ctx context.Context, usuario *model.Usuario) (*model.Usuario, error) {
	id, err := r.gw.Insert(ctx, toUsuarioDocument(usuario))
	if err != nil {
		return nil, err
	}

	created := *usuario
	created.ID = id
	return &created, nil
}

// CountByLogin はloginが一致するアカウント数を返す。
func (r *MongoUsuarioRepo) CountByLogin(ctx context.Context, login string) (int64, error) {
	return r.gw.CountWhere(ctx, ByLogin(login))
}

// FindByLogin はloginが一致する最初のアカウントを返す。
// 一意制約がないため重複があり得るが、その場合もストアの既定順で先頭の1件を使う。
func (r *MongoUsuarioRepo) FindByLogin(ctx context.Context, login string) (*model.Usuario, error) {
	docs, err := r.gw.FindWhere(ctx, ByLogin(login))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0].toModel(), nil
}

// Replace はusuario.IDのアカウントを置き換える。パスワードの再ハッシュ時に使う。
func (r *MongoUsuarioRepo) Replace(ctx context.Context, usuario *model.Usuario) (int64, error) {
	return r.gw.Replace(ctx, usuario.ID, toUsuarioDocument(usuario))
}
