package authsvc

import (
	"context"
	"errors"
	"testing"

	"carsharing/model"
	"carsharing/repository/memory"
	userrepo "carsharing/repository/user"
	"carsharing/service/errs"
	"carsharing/util/hash"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	return nil, pgx.ErrNoRows
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(context.Background(), model.RegisterReq{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "USER@Example.COM",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleCustomer, u.Role)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{Email: " ", Password: "123"})
	require.Equal(t, errs.CodeInvalidInput, errs.Code(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{Email: "taken@example.com", Password: "123456"})
	require.ErrorIs(t, err, errs.ErrEmailTaken)
}

func TestRegister_UniqueViolation(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{Email: "race@example.com", Password: "123456"})
	require.ErrorIs(t, err, errs.ErrEmailTaken)
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{Email: "ok@example.com", Password: "123456"})
	require.Error(t, err)
	require.Equal(t, errs.ErrCode(""), errs.Code(err))
}

func TestLogin_Success(t *testing.T) {
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleManager}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{Email: "User@Example.com", Password: pw})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_Failures(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	known := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 101, Email: email, PasswordHash: hashed}, nil
		},
	}

	tests := []struct {
		name string
		repo *mockRepo
		req  model.LoginReq
		want errs.ErrCode
	}{
		{"bad input", &mockRepo{}, model.LoginReq{Email: " "}, errs.CodeInvalidInput},
		{"unknown user", &mockRepo{}, model.LoginReq{Email: "missing@example.com", Password: "x"}, errs.CodeInvalidCredentials},
		{"wrong password", known, model.LoginReq{Email: "user@example.com", Password: "wrong-password"}, errs.CodeInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(tt.repo, "test-secret").Login(context.Background(), tt.req)
			require.Equal(t, tt.want, errs.Code(err))
		})
	}
}

func TestRegisterThenLogin_MemoryStore(t *testing.T) {
	svc := New(memory.New().Users(), "test-secret")
	ctx := context.Background()

	u, _, err := svc.Register(ctx, model.RegisterReq{FirstName: "A", LastName: "B", Email: "a@b.io", Password: "123456"})
	require.NoError(t, err)

	got, tok, err := svc.Login(ctx, model.LoginReq{Email: "A@B.io", Password: "123456"})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, u.ID, got.ID)

	_, _, err = svc.Register(ctx, model.RegisterReq{Email: "a@b.io", Password: "654321"})
	require.ErrorIs(t, err, errs.ErrEmailTaken)
}
