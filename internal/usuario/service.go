// Package usuario はアカウント登録と認証のドメインロジックを提供する。
package usuario

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/infectados/internal/model"
	"github.com/hitoshi/infectados/internal/repository"
	"github.com/hitoshi/infectados/internal/validation"
)

// ストア・協調者障害時のメッセージ接頭辞
const (
	prefixRegister     = "Erro ao cadastrar usuário: "
	prefixAuthenticate = "Erro ao autenticar usuário: "
)

// 認証試行の結果ラベル
const (
	AttemptSuccess = "success"
	AttemptFailure = "failure"
	AttemptError   = "error"
)

// TokenIssuer は認証済みの主体にトークンを発行するインターフェース。
type TokenIssuer interface {
	IssueToken(ctx context.Context, principal model.Principal) (string, error)
}

// AttemptRecorder は認証試行の結果を記録するインターフェース。
type AttemptRecorder interface {
	RecordAuthAttempt(result string)
}

// AuthResult は認証成功時の結果。
type AuthResult struct {
	Login string
	Token string
}

// Service はアカウントのサービス層。
type Service struct {
	repo     repository.UsuarioRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	recorder AttemptRecorder

	dummyOnce sync.Once
	dummy     string
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.UsuarioRepository, hasher PasswordHasher, issuer TokenIssuer, recorder AttemptRecorder) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		issuer:   issuer,
		recorder: recorder,
	}
}

// Register はアカウントを登録し、成功メッセージを返す。
// 登録済みloginの確認と挿入は不可分ではなく、同時登録で重複し得る。
func (s *Service) Register(ctx context.Context, in validation.UsuarioInput) (string, error) {
	fields, violations := validation.ValidateUsuario(in)
	if len(violations) > 0 {
		return "", model.NewValidationError(violations)
	}

	count, err := s.repo.CountByLogin(ctx, fields.Login)
	if err != nil {
		return "", s.failure(prefixRegister, err)
	}
	if count > 0 {
		return "", model.NewUsuarioAlreadyExistsError()
	}

	hashed, err := s.hasher.Hash(fields.Senha)
	if err != nil {
		slog.Error("パスワードのハッシュ化でエラー", slog.Any("error", err))
		return "", model.NewInternalError(err)
	}

	if _, err := s.repo.Insert(ctx, model.NewUsuario(fields.Login, hashed)); err != nil {
		return "", s.failure(prefixRegister, err)
	}

	slog.Info("アカウントを登録しました", slog.String("login", fields.Login))
	return model.MsgUsuarioInserido, nil
}

// Authenticate はloginとパスワードを照合し、トークンを発行する。
// loginが存在しない場合とパスワードが一致しない場合は同じエラーを返す。
func (s *Service) Authenticate(ctx context.Context, in validation.UsuarioInput) (*AuthResult, error) {
	fields, violations := validation.ValidateUsuario(in)
	if len(violations) > 0 {
		return nil, model.NewValidationError(violations)
	}

	account, err := s.repo.FindByLogin(ctx, fields.Login)
	if err != nil {
		s.record(AttemptError)
		return nil, s.failure(prefixAuthenticate, err)
	}
	if account == nil {
		// 応答時間でloginの有無が判別できないよう、存在する場合と同じ照合を行う
		_, _, _ = s.hasher.Compare(s.dummyHash(), fields.Senha)
		s.record(AttemptFailure)
		return nil, model.NewInvalidCredentialsError()
	}

	ok, needsRehash, err := s.hasher.Compare(account.Senha, fields.Senha)
	if err != nil {
		s.record(AttemptError)
		return nil, s.failure(prefixAuthenticate, err)
	}
	if !ok {
		s.record(AttemptFailure)
		return nil, model.NewInvalidCredentialsError()
	}

	if needsRehash {
		s.rehash(ctx, account, fields.Senha)
	}

	token, err := s.issuer.IssueToken(ctx, model.Principal{Login: account.Login})
	if err != nil {
		s.record(AttemptError)
		slog.Error("トークン発行でエラー", slog.String("login", account.Login), slog.Any("error", err))
		return nil, model.NewCollaboratorError(prefixAuthenticate, err)
	}

	s.record(AttemptSuccess)
	return &AuthResult{Login: account.Login, Token: token}, nil
}

// rehash は保存形式を現在の設定で更新する。失敗しても認証結果には影響させない。
func (s *Service) rehash(ctx context.Context, account *model.Usuario, senha string) {
	hashed, err := s.hasher.Hash(senha)
	if err != nil {
		slog.Warn("パスワードの再ハッシュに失敗", slog.String("login", account.Login), slog.Any("error", err))
		return
	}

	updated := *account
	updated.Senha = hashed
	if _, err := s.repo.Replace(ctx, &updated); err != nil {
		slog.Warn("再ハッシュしたパスワードの保存に失敗", slog.String("login", account.Login), slog.Any("error", err))
		return
	}
	slog.Info("パスワードを再ハッシュしました", slog.String("login", account.Login))
}

// dummyHash は存在しないloginの照合に使う保存形式を返す。
func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		hashed, err := s.hasher.Hash("infectados-dummy-senha")
		if err != nil {
			slog.Warn("ダミーハッシュの生成に失敗", slog.Any("error", err))
			return
		}
		s.dummy = hashed
	})
	return s.dummy
}

func (s *Service) failure(prefix string, err error) error {
	slog.Error("アカウントのストア操作でエラー", slog.Any("error", err))
	return model.NewPersistenceError(prefix, err)
}

func (s *Service) record(result string) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(result)
	}
}
