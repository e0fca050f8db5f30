// Package repository はデータ永続化のインターフェースとMongoDB実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/infectados/internal/model"
)

// InfectadoRepository は感染者レコードの永続化インターフェース。
type InfectadoRepository interface {
	// Insert はレコードを新規作成し、ストアが採番したIDを設定したレコードを返す。
	Insert(ctx context.Context, infectado *model.Infectado) (*model.Infectado, error)

	// Replace はinfectado.IDのレコードを丸ごと置き換え、一致件数を返す。
	Replace(ctx context.Context, infectado *model.Infectado) (int64, error)

	// Delete は指定IDのレコードを削除し、削除件数を返す。
	Delete(ctx context.Context, id string) (int64, error)

	// FindAll は全レコードを返す。0件の場合は空スライスを返す。
	FindAll(ctx context.Context) ([]*model.Infectado, error)

	// FindByID は指定IDのレコードを返す。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Infectado, error)
}

// UsuarioRepository はアカウントの永続化インターフェース。
type UsuarioRepository interface {
	// Insert はアカウントを新規作成し、IDを設定したアカウントを返す。
	Insert(ctx context.Context, usuario *model.Usuario) (*model.Usuario, error)

	// CountByLogin はloginが一致するアカウント数を返す。
	CountByLogin(ctx context.Context, login string) (int64, error)

	// FindByLogin はloginが一致する最初のアカウントを返す。見つからない場合はnilを返す。
	FindByLogin(ctx context.Context, login string) (*model.Usuario, error)

	// Replace はusuario.IDのアカウントを置き換え、一致件数を返す。
	Replace(ctx context.Context, usuario *model.Usuario) (int64, error)
}
