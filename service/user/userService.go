package usersvc

import (
	"context"
	"errors"
	"strings"

	"carsharing/model"
	userrepo "carsharing/repository/user"
	"carsharing/service/errs"
	"carsharing/service/notify"

	"github.com/jackc/pgx/v5"
)

type Service interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	// UpdateRole sets the user's role and tells the admin chat.
	UpdateRole(ctx context.Context, id int64, role string) (*model.User, error)
}

type service struct {
	r userrepo.Repo
	n notify.Notifier
}

func New(r userrepo.Repo, n notify.Notifier) Service {
	if n == nil {
		n = notify.Discard
	}
	return &service{r: r, n: n}
}

func parseRole(s string) (model.Role, error) {
	switch r := model.Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case model.RoleCustomer, model.RoleManager:
		return r, nil
	}
	return "", errs.Invalid("unknown role %q", s)
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrUserNotFound
	}
	return u, err
}

func (s *service) UpdateRole(ctx context.Context, id int64, role string) (*model.User, error) {
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	u, err := s.r.UpdateRole(ctx, id, r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	s.n.Notify(ctx, notify.Event{Kind: notify.RoleUpdated, User: u})
	return u, nil
}
