package infectado

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hitoshi/infectados/internal/model"
	"github.com/hitoshi/infectados/internal/validation"
)

// --- モック ---

type mockRepo struct {
	insertFn   func(ctx context.Context, i *model.Infectado) (*model.Infectado, error)
	replaceFn  func(ctx context.Context, i *model.Infectado) (int64, error)
	deleteFn   func(ctx context.Context, id string) (int64, error)
	findAllFn  func(ctx context.Context) ([]*model.Infectado, error)
	findByIDFn func(ctx context.Context, id string) (*model.Infectado, error)
}

func (m *mockRepo) Insert(ctx context.Context, i *model.Infectado) (*model.Infectado, error) {
	return m.insertFn(ctx, i)
}
func (m *mockRepo) Replace(ctx context.Context, i *model.Infectado) (int64, error) {
	return m.replaceFn(ctx, i)
}
func (m *mockRepo) Delete(ctx context.Context, id string) (int64, error) {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) FindAll(ctx context.Context) ([]*model.Infectado, error) {
	return m.findAllFn(ctx)
}
func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.Infectado, error) {
	return m.findByIDFn(ctx, id)
}

func input(t *testing.T, body string) validation.InfectadoInput {
	t.Helper()
	var in validation.InfectadoInput
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("failed to decode input: %v", err)
	}
	return in
}

const validBody = `{"dataNascimento":"1990-05-01","sexo":"F","latitude":-23.55,"longitude":-46.63}`

func apiError(t *testing.T, err error) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	return apiErr
}

// --- テスト ---

func TestCreate_InvalidInputDoesNotWrite(t *testing.T) {
	repo := &mockRepo{
		insertFn: func(ctx context.Context, i *model.Infectado) (*model.Infectado, error) {
			t.Fatal("Insert must not be called for invalid input")
			return nil, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), input(t, `{"sexo":"F","latitude":1}`))

	apiErr := apiError(t, err)
	if apiErr.Kind != model.KindValidation {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindValidation)
	}
	want := []string{validation.MsgDataNascimentoObrigatoria, validation.MsgLongitudeObrigatoria}
	if !reflect.DeepEqual(apiErr.Messages, want) {
		t.Errorf("Messages = %v, want %v", apiErr.Messages, want)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		insertFn: func(ctx context.Context, i *model.Infectado) (*model.Infectado, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), input(t, validBody))

	apiErr := apiError(t, err)
	if apiErr.Kind != model.KindPersistence {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, model.KindPersistence)
	}
	if want := "Erro ao cadastrar infectado: connection refused"; apiErr.Messages[0] != want {
		t.Errorf("Messages[0] = %q, want %q", apiErr.Messages[0], want)
	}
	if apiErr.Severity() != model.SeverityServer {
		t.Errorf("Severity = %q, want server", apiErr.Severity())
	}
}

func TestUpdate_ZeroMatchedIsNotFound(t *testing.T) {
	repo := &mockRepo{
		replaceFn: func(ctx context.Context, i *model.Infectado) (int64, error) {
			if i.ID != "abc" {
				t.Errorf("ID = %q, want abc", i.ID)
			}
			return 0, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "abc", input(t, validBody))

	apiErr := apiError(t, err)
	if apiErr.Kind != model.KindNotFound || apiErr.Messages[0] != model.MsgInfectadoNotFound {
		t.Errorf("err = %v, want not found", apiErr)
	}
}

func TestUpdate_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		replaceFn: func(ctx context.Context, i *model.Infectado) (int64, error) {
			return 0, errors.New("timeout")
		},
	}
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "abc", input(t, validBody))

	if got := apiError(t, err).Messages[0]; got != "Erro ao atualizar infectado: timeout" {
		t.Errorf("Messages[0] = %q", got)
	}
}

func TestDelete_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		deleted  int64
		repoErr  error
		wantMsg  string
		wantKind model.ErrorKind
	}{
		{name: "deleted", deleted: 1, wantMsg: model.MsgInfectadoExcluido},
		{name: "not found", deleted: 0, wantKind: model.KindNotFound},
		{name: "store failure", repoErr: errors.New("down"), wantKind: model.KindPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				deleteFn: func(ctx context.Context, id string) (int64, error) {
					return tt.deleted, tt.repoErr
				},
			}
			msg, err := NewService(repo).Delete(context.Background(), "abc")

			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if msg != tt.wantMsg {
					t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
				}
				return
			}
			if got := apiError(t, err).Kind; got != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestList_NilFromStoreBecomesEmpty(t *testing.T) {
	repo := &mockRepo{
		findAllFn: func(ctx context.Context) ([]*model.Infectado, error) {
			return nil, nil
		},
	}

	got, err := NewService(repo).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List = %v, want empty non-nil slice", got)
	}
}

func TestList_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		findAllFn: func(ctx context.Context) ([]*model.Infectado, error) {
			return nil, errors.New("down")
		},
	}

	_, err := NewService(repo).List(context.Background())
	if got := apiError(t, err).Messages[0]; got != "Erro ao obter infectados: down" {
		t.Errorf("Messages[0] = %q", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Infectado, error) {
			return nil, nil
		},
	}

	_, err := NewService(repo).Get(context.Background(), "abc")
	if got := apiError(t, err).Kind; got != model.KindNotFound {
		t.Errorf("Kind = %q, want not_found", got)
	}
}

func TestGet_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Infectado, error) {
			return nil, errors.New("down")
		},
	}

	_, err := NewService(repo).Get(context.Background(), "abc")
	apiErr := apiError(t, err)
	if apiErr.Kind != model.KindPersistence {
		t.Errorf("Kind = %q, want persistence", apiErr.Kind)
	}
	if got := apiErr.Messages[0]; got != "Erro ao obter infectado: down" {
		t.Errorf("Messages[0] = %q", got)
	}
}
