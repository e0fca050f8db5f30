// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// ErrorKind はサービス境界で返すエラーの種別。
type ErrorKind string

// 定義済みエラー種別
const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindCredential   ErrorKind = "credential"
	KindUnauthorized ErrorKind = "unauthorized"
	KindPersistence  ErrorKind = "persistence"
	KindCollaborator ErrorKind = "collaborator"
	KindInternal     ErrorKind = "internal"
)

// Severity はエラーの責任区分（クライアント起因かサーバー起因か）を表す。
type Severity string

const (
	SeverityClient Severity = "client"
	SeverityServer Severity = "server"
)

// APIError は統一エラーフォーマットを表す。
// Messagesは利用者向けのメッセージを順序付きで保持する。
type APIError struct {
	Kind     ErrorKind
	Code     string   // エラーコード
	Category string   // カテゴリ: validation, infectado, auth, system
	Messages []string // 利用者向けメッセージ（入力順）
	Err      error    // 原因。ログ用でレスポンスには含めない
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, strings.Join(e.Messages, "; "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap は原因エラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// Severity はエラー種別からクライアント/サーバーの区分を返す。
func (e *APIError) Severity() Severity {
	switch e.Kind {
	case KindPersistence, KindCollaborator, KindInternal:
		return SeverityServer
	default:
		return SeverityClient
	}
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInfectadoNotFound  = "INFECTADO_NOT_FOUND"
	ErrCodeUsuarioExists      = "USUARIO_ALREADY_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodePersistence        = "PERSISTENCE_ERROR"
	ErrCodeTokenIssue         = "TOKEN_ISSUE_FAILED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// 利用者向けメッセージ
const (
	MsgInvalidRequest      = "Corpo da requisição inválido."
	MsgInfectadoNotFound   = "Infectado não encontrado."
	MsgInfectadoExcluido   = "Infectado excluido com sucesso."
	MsgUsuarioExists       = "Usuário já cadastrado."
	MsgUsuarioInserido     = "Usuário inserido com sucesso."
	MsgInvalidCredentials  = "Usuário e/ou Senha inválidos."
	MsgUnauthorized        = "Não autorizado."
	MsgInternalServerError = "Erro interno do servidor."
)

// NewValidationError は入力検証エラーを生成する。messagesは検出順のまま保持する。
func NewValidationError(messages []string) *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeValidation,
		Category: "validation",
		Messages: messages,
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidRequest,
		Category: "validation",
		Messages: []string{MsgInvalidRequest},
	}
}

// NewInfectadoNotFoundError は感染者レコード未検出エラーを生成する。
func NewInfectadoNotFoundError() *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeInfectadoNotFound,
		Category: "infectado",
		Messages: []string{MsgInfectadoNotFound},
	}
}

// NewUsuarioAlreadyExistsError はログインIDが登録済みの場合のエラーを生成する。
func NewUsuarioAlreadyExistsError() *APIError {
	return &APIError{
		Kind:     KindConflict,
		Code:     ErrCodeUsuarioExists,
		Category: "auth",
		Messages: []string{MsgUsuarioExists},
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ログインIDの存在有無にかかわらず同じ内容を返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Kind:     KindCredential,
		Code:     ErrCodeInvalidCredentials,
		Category: "auth",
		Messages: []string{MsgInvalidCredentials},
	}
}

// NewUnauthorizedError は未認証アクセスのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeUnauthorized,
		Category: "auth",
		Messages: []string{MsgUnauthorized},
	}
}

// NewPersistenceError はデータストア障害のエラーを生成する。
// メッセージは "<prefix><原因のメッセージ>" の形式になる。
func NewPersistenceError(prefix string, err error) *APIError {
	return &APIError{
		Kind:     KindPersistence,
		Code:     ErrCodePersistence,
		Category: "system",
		Messages: []string{prefix + err.Error()},
		Err:      err,
	}
}

// NewCollaboratorError はトークン発行など外部協調者の障害エラーを生成する。
func NewCollaboratorError(prefix string, err error) *APIError {
	return &APIError{
		Kind:     KindCollaborator,
		Code:     ErrCodeTokenIssue,
		Category: "system",
		Messages: []string{prefix + err.Error()},
		Err:      err,
	}
}

// NewInternalError は分類できない内部エラーを生成する。詳細はログのみに残す。
func NewInternalError(err error) *APIError {
	return &APIError{
		Kind:     KindInternal,
		Code:     ErrCodeInternal,
		Category: "system",
		Messages: []string{MsgInternalServerError},
		Err:      err,
	}
}
