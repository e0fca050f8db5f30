package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hitoshi/infectados/internal/model"
)

// 永続化ドキュメントのフィールド名はGoのフィールド名の先頭を小文字にしたもの。
// ドキュメントに未知のフィールドがあっても読み込み時には無視される。

type geoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type infectadoDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	DataNascimento time.Time          `bson:"dataNascimento"`
	Sexo           string             `bson:"sexo"`
	Localizacao    geoPointDocument   `bson:"localizacao"`
}

type usuarioDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Login string             `bson:"login"`
	Senha string             `bson:"senha"`
}

// toInfectadoDocument はIDを含めずにドキュメントへ変換する。
// _idはInsertではストアが採番し、Replaceでは既存の値が維持される。
func toInfectadoDocument(i *model.Infectado) *infectadoDocument {
	return &infectadoDocument{
		DataNascimento: i.DataNascimento,
		Sexo:           i.Sexo,
		Localizacao: geoPointDocument{
			Type:        i.Localizacao.Type,
			Coordinates: []float64{i.Localizacao.Longitude(), i.Localizacao.Latitude()},
		},
	}
}

func (d *infectadoDocument) toModel() *model.Infectado {
	loc := model.GeoPoint{Type: d.Localizacao.Type}
	copy(loc.Coordinates[:], d.Localizacao.Coordinates)
	return &model.Infectado{
		ID:             hexOrEmpty(d.ID),
		DataNascimento: d.DataNascimento.UTC(),
		Sexo:           d.Sexo,
		Localizacao:    loc,
	}
}

func toUsuarioDocument(u *model.Usuario) *usuarioDocument {
	return &usuarioDocument{
		Login: u.Login,
		Senha: u.Senha,
	}
}

func (d *usuarioDocument) toModel() *model.Usuario {
	return &model.Usuario{
		ID:    hexOrEmpty(d.ID),
		Login: d.Login,
		Senha: d.Senha,
	}
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
