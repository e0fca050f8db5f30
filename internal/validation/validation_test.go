package validation

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func decodeInfectado(t *testing.T, body string) InfectadoInput {
	t.Helper()
	var in InfectadoInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return in
}

func TestValidateInfectado_Valid(t *testing.T) {
	in := decodeInfectado(t, `{"dataNascimento":"1990-05-01","sexo":"F","latitude":-23.55,"longitude":-46.63}`)

	got, violations := ValidateInfectado(in)
	if violations != nil {
		t.Fatalf("violations = %v, want nil", violations)
	}

	wantDate := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	if !got.DataNascimento.Equal(wantDate) {
		t.Errorf("DataNascimento = %v, want %v", got.DataNascimento, wantDate)
	}
	if got.Sexo != "F" {
		t.Errorf("Sexo = %q, want %q", got.Sexo, "F")
	}
	if got.Latitude != -23.55 || got.Longitude != -46.63 {
		t.Errorf("coords = (%v, %v), want (-23.55, -46.63)", got.Latitude, got.Longitude)
	}
}

func TestValidateInfectado_AcceptsRFC3339(t *testing.T) {
	in := decodeInfectado(t, `{"dataNascimento":"1990-05-01T10:00:00-03:00","sexo":"M","latitude":1,"longitude":2}`)

	got, violations := ValidateInfectado(in)
	if violations != nil {
		t.Fatalf("violations = %v, want nil", violations)
	}
	want := time.Date(1990, 5, 1, 13, 0, 0, 0, time.UTC)
	if !got.DataNascimento.Equal(want) {
		t.Errorf("DataNascimento = %v, want %v", got.DataNascimento, want)
	}
}

// TestValidateInfectado_ZeroCoordinatesArePresent は0が未指定として扱われないことを検証する。
func TestValidateInfectado_ZeroCoordinatesArePresent(t *testing.T) {
	in := decodeInfectado(t, `{"dataNascimento":"2000-01-01","sexo":"F","latitude":0,"longitude":0}`)

	if _, violations := ValidateInfectado(in); violations != nil {
		t.Errorf("violations = %v, want nil", violations)
	}
}

// TestValidateInfectado_CollectsAllViolations は欠落フィールドがフィールド順にすべて列挙されることを検証する。
func TestValidateInfectado_CollectsAllViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty body",
			body: `{}`,
			want: []string{MsgDataNascimentoObrigatoria, MsgSexoObrigatorio, MsgLatitudeObrigatoria, MsgLongitudeObrigatoria},
		},
		{
			name: "missing sexo and longitude",
			body: `{"dataNascimento":"1990-05-01","latitude":1}`,
			want: []string{MsgSexoObrigatorio, MsgLongitudeObrigatoria},
		},
		{
			name: "null values count as missing",
			body: `{"dataNascimento":null,"sexo":null,"latitude":1,"longitude":2}`,
			want: []string{MsgDataNascimentoObrigatoria, MsgSexoObrigatorio},
		},
		{
			name: "blank sexo",
			body: `{"dataNascimento":"1990-05-01","sexo":"   ","latitude":1,"longitude":2}`,
			want: []string{MsgSexoObrigatorio},
		},
		{
			name: "wrong types",
			body: `{"dataNascimento":"ontem","sexo":1,"latitude":"norte","longitude":true}`,
			want: []string{MsgDataNascimentoInvalida, MsgSexoInvalido, MsgLatitudeInvalida, MsgLongitudeInvalida},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, violations := ValidateInfectado(decodeInfectado(t, tt.body))
			if !reflect.DeepEqual(violations, tt.want) {
				t.Errorf("violations = %v, want %v", violations, tt.want)
			}
		})
	}
}

func TestValidateUsuario(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLogin string
		want      []string
	}{
		{"valid", `{"login":"ana","senha":"segredo"}`, "ana", nil},
		{"missing both", `{}`, "", []string{MsgLoginObrigatorio, MsgSenhaObrigatoria}},
		{"missing senha", `{"login":"ana"}`, "ana", []string{MsgSenhaObrigatoria}},
		{"numeric login", `{"login":42,"senha":"x"}`, "", []string{MsgLoginInvalido}},
		{"case-insensitive keys", `{"Login":"ana","Senha":"x"}`, "ana", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in UsuarioInput
			if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			got, violations := ValidateUsuario(in)
			if !reflect.DeepEqual(violations, tt.want) {
				t.Errorf("violations = %v, want %v", violations, tt.want)
			}
			if got.Login != tt.wantLogin {
				t.Errorf("Login = %q, want %q", got.Login, tt.wantLogin)
			}
		})
	}
}
