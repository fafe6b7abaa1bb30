package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

const userSelect = `
SELECT u.id, u.username, u.email, u.role_id, u.is_active, u.password_hash, u.created_at,
       r.name AS role_name
FROM users u
JOIN roles r ON r.id = u.role_id`

type userRepository struct {
	exec *database.Executor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(exec *database.Executor) user.Repository {
	return &userRepository{exec: exec}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM users WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		query += ` AND id <> $3`
		args = append(args, excludedUsers[0].ID)
	}

	var matches []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.exec.Select(ctx, &matches, query, args...); err != nil {
		return err
	}
	for _, m := range matches {
		if m.Username == username {
			return user.ErrUsernameExists
		}
		if m.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	id, err := repo.exec.ExecID(ctx,
		`INSERT INTO users (username, email, password_hash, role_id, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		usr.Username, usr.Email, usr.PasswordHash, usr.RoleID, usr.IsActive, usr.CreatedAt,
	)
	if err != nil {
		// the uniqueness pre-check loses races; map the constraint back
		if database.IsUniqueViolation(err, "users_username_key") {
			return user.User{}, user.ErrUsernameExists
		}
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	usr.ID = id
	return usr, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, pq core.PageQuery) ([]user.User, int, error) {
	var users []user.User
	err := repo.exec.Select(ctx, &users,
		userSelect+` ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`,
		pq.Limit, pq.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := repo.exec.Get(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.exec.Get(ctx, &usr, userSelect+` WHERE u.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	var usr user.User
	err := repo.exec.Get(ctx, &usr, userSelect+` WHERE u.username = $1 OR u.email = $1`, uname)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	set := []string{"username = $1", "email = $2", "role_id = $3"}
	args := []interface{}{usr.Username, usr.Email, usr.RoleID}
	if isActive != nil {
		set = append(set, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *isActive)
	}
	args = append(args, usr.ID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	affected, err := repo.exec.Exec(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err, "users_username_key") {
			return user.User{}, user.ErrUsernameExists
		}
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	if affected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeactivateUser(ctx context.Context, id int) error {
	affected, err := repo.exec.Exec(ctx,
		`UPDATE users SET is_active = FALSE WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetPasswordHash(ctx context.Context, id int, hash []byte) error {
	affected, err := repo.exec.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) GetRoleByName(ctx context.Context, name string) (user.Role, error) {
	var role user.Role
	err := repo.exec.Get(ctx, &role,
		`SELECT id, name, COALESCE(description, '') AS description FROM roles WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Role{}, user.ErrRoleNotFound
		}
		return user.Role{}, err
	}
	return role, nil
}

func (repo *userRepository) QueryRoles(ctx context.Context) ([]user.Role, error) {
	var roles []user.Role
	err := repo.exec.Select(ctx, &roles,
		`SELECT id, name, COALESCE(description, '') AS description FROM roles ORDER BY id`)
	return roles, err
}
