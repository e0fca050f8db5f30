// Package validation はリクエスト入力の必須項目・型チェックを提供する。
// 違反は最初の1件で止めず、フィールド順にすべて収集する。
package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// 検証メッセージ
const (
	MsgDataNascimentoObrigatoria = "Dt. nascimento: campo obrigatório"
	MsgDataNascimentoInvalida    = "Dt. nascimento: data inválida"
	MsgSexoObrigatorio           = "Sexo: campo obrigatório"
	MsgSexoInvalido              = "Sexo: valor inválido"
	MsgLatitudeObrigatoria       = "Latitude: campo obrigatório"
	MsgLatitudeInvalida          = "Latitude: valor inválido"
	MsgLongitudeObrigatoria      = "Longitude: campo obrigatório"
	MsgLongitudeInvalida         = "Longitude: valor inválido"
	MsgLoginObrigatorio          = "Login: campo obrigatório"
	MsgLoginInvalido             = "Login: valor inválido"
	MsgSenhaObrigatoria          = "Senha: campo obrigatório"
	MsgSenhaInvalida             = "Senha: valor inválido"
)

// dateLayouts は生年月日として受け付ける書式。
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
}

// InfectadoInput は感染者レコードの登録・更新リクエストのボディ。
// 各フィールドは未解析のまま受け取り、存在と型を検証時に判定する。
type InfectadoInput struct {
	DataNascimento json.RawMessage `json:"dataNascimento"`
	Sexo           json.RawMessage `json:"sexo"`
	Latitude       json.RawMessage `json:"latitude"`
	Longitude      json.RawMessage `json:"longitude"`
}

// InfectadoFields は検証済みの感染者レコード入力。
type InfectadoFields struct {
	DataNascimento time.Time
	Sexo           string
	Latitude       float64
	Longitude      float64
}

// UsuarioInput はアカウント登録・認証リクエストのボディ。
type UsuarioInput struct {
	Login json.RawMessage `json:"login"`
	Senha json.RawMessage `json:"senha"`
}

// UsuarioFields は検証済みのアカウント入力。
type UsuarioFields struct {
	Login string
	Senha string
}

// ValidateInfectado は感染者レコード入力を検証する。
// 違反がない場合はnilのスライスを返す。
func ValidateInfectado(in InfectadoInput) (InfectadoFields, []string) {
	var (
		out        InfectadoFields
		violations []string
	)

	if dateStr, msg := requiredString(in.DataNascimento, MsgDataNascimentoObrigatoria, MsgDataNascimentoInvalida); msg != "" {
		violations = append(violations, msg)
	} else if d, ok := parseDate(dateStr); !ok {
		violations = append(violations, MsgDataNascimentoInvalida)
	} else {
		out.DataNascimento = d
	}

	if s, msg := requiredString(in.Sexo, MsgSexoObrigatorio, MsgSexoInvalido); msg != "" {
		violations = append(violations, msg)
	} else {
		out.Sexo = s
	}

	if v, msg := requiredNumber(in.Latitude, MsgLatitudeObrigatoria, MsgLatitudeInvalida); msg != "" {
		violations = append(violations, msg)
	} else {
		out.Latitude = v
	}

	if v, msg := requiredNumber(in.Longitude, MsgLongitudeObrigatoria, MsgLongitudeInvalida); msg != "" {
		violations = append(violations, msg)
	} else {
		out.Longitude = v
	}

	return out, violations
}

// ValidateUsuario はアカウント入力を検証する。
func ValidateUsuario(in UsuarioInput) (UsuarioFields, []string) {
	var (
		out        UsuarioFields
		violations []string
	)

	if s, msg := requiredString(in.Login, MsgLoginObrigatorio, MsgLoginInvalido); msg != "" {
		violations = append(violations, msg)
	} else {
		out.Login = s
	}

	if s, msg := requiredString(in.Senha, MsgSenhaObrigatoria, MsgSenhaInvalida); msg != "" {
		violations = append(violations, msg)
	} else {
		out.Senha = s
	}

	return out, violations
}

// isAbsent はフィールドが未指定またはnullかを判定する。
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// requiredString は必須の文字列フィールドを取り出す。
// 空白のみの文字列は未指定として扱うが、値そのものは加工しない。
func requiredString(raw json.RawMessage, missingMsg, invalidMsg string) (string, string) {
	if isAbsent(raw) {
		return "", missingMsg
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidMsg
	}
	if strings.TrimSpace(s) == "" {
		return "", missingMsg
	}
	return s, ""
}

// requiredNumber は必須の数値フィールドを取り出す。0は有効な値。
func requiredNumber(raw json.RawMessage, missingMsg, invalidMsg string) (float64, string) {
	if isAbsent(raw) {
		return 0, missingMsg
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, invalidMsg
	}
	return v, ""
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
