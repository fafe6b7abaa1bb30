package user

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("account deactivated")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// FilterUsers returns a page of users (newest first) and the unpaged total.
		FilterUsers(ctx context.Context, pq core.PageQuery) ([]User, int, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		// DeactivateUser soft-deletes: flips is_active off, the row stays.
		DeactivateUser(ctx context.Context, id int) error
		SetPasswordHash(ctx context.Context, id int, hash []byte) error
		GetRoleByName(ctx context.Context, name string) (Role, error)
		QueryRoles(ctx context.Context) ([]Role, error)
	}

	Service interface {
		CheckUniqueness(uname, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, uname, pwd string) (User, error)
		Query(ctx context.Context, pq core.PageQuery) ([]User, core.Pagination, error)
		GetByID(ctx context.Context, id int) (User, error)
		Update(ctx context.Context, origUsr User, uu UpdateUser) (User, error)
		Deactivate(ctx context.Context, id int) error
		ChangePassword(ctx context.Context, id int, cp ChangePassword) error
		QueryRoles(ctx context.Context) ([]Role, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.Background(), uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create registers a user under the given role (validated beforehand; defaults to student).
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	role, err := svc.repo.GetRoleByName(ctx, nu.Role)
	if err != nil {
		return User{}, err
	}

	usr := User{
		Username:  nu.Username,
		Email:     nu.Email,
		RoleID:    role.ID,
		Role:      role.Name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate verifies credentials against the stored hash.
// uname may be a username or an email.
func (svc *service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrUserInactive
	}
	return usr, nil
}

func (svc *service) Query(ctx context.Context, pq core.PageQuery) ([]User, core.Pagination, error) {
	pq.Clean()
	users, total, err := svc.repo.FilterUsers(ctx, pq)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return users, core.NewPagination(pq, total), nil
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, origUsr User, uu UpdateUser) (User, error) {
	usr := User{
		ID:       origUsr.ID,
		Username: uu.Username,
		Email:    uu.Email,
		RoleID:   origUsr.RoleID,
		Role:     origUsr.Role,
	}
	if uu.Role != "" && uu.Role != origUsr.Role {
		role, err := svc.repo.GetRoleByName(ctx, uu.Role)
		if err != nil {
			return User{}, err
		}
		usr.RoleID = role.ID
		usr.Role = role.Name
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *service) Deactivate(ctx context.Context, id int) error {
	return svc.repo.DeactivateUser(ctx, id)
}

func (svc *service) ChangePassword(ctx context.Context, id int, cp ChangePassword) error {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(ErrWrongPassword,
			core.FieldError{Field: "old_password", Error: ErrWrongPassword.Error()})
	}
	if err := usr.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	return svc.repo.SetPasswordHash(ctx, usr.ID, usr.PasswordHash)
}

func (svc *service) QueryRoles(ctx context.Context) ([]Role, error) {
	return svc.repo.QueryRoles(ctx)
}
