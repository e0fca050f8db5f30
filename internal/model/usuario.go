package model

// Usuario はAPI利用者のアカウントを表す。
// Senhaには保存形式（bcryptハッシュ、または旧来の平文）がそのまま入る。
type Usuario struct {
	ID    string
	Login string
	Senha string
}

// NewUsuario はIDを持たないアカウントを生成する。
func NewUsuario(login, senha string) *Usuario {
	return &Usuario{
		Login: login,
		Senha: senha,
	}
}

// Principal はトークン発行対象となる認証済みの主体。
type Principal struct {
	Login string
}
