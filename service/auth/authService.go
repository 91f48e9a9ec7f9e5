package authsvc

import (
	"context"
	"errors"
	"strings"

	"carsharing/model"
	userrepo "carsharing/repository/user"
	"carsharing/service/errs"
	"carsharing/util/hash"
	jwtutil "carsharing/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	tokenTTLHours  = 24
	minPasswordLen = 6
)

type Service interface {
	// Register creates a CUSTOMER and returns a token for it.
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < minPasswordLen {
		return nil, "", errs.Invalid("email and a password of at least %d characters are required", minPasswordLen)
	}

	if _, err := s.ur.ByEmail(ctx, email); err == nil {
		return nil, "", errs.ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Role:         model.RoleCustomer,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isDuplicate(err) {
			return nil, "", errs.ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// isDuplicate catches the register race that slips past the ByEmail check.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", errs.Invalid("email and password are required")
	}
	u, err := s.ur.ByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", errs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", errs.ErrInvalidCredentials
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
