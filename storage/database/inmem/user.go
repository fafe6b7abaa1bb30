package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// query must be called with at least the read lock held.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if isExcluded(usr, excludedUsers) {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = repo.db.nextPK()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) FilterUsers(_ context.Context, pq core.PageQuery) ([]user.User, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := repo.query()
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })

	total := len(users)
	lo, hi := paginate(total, pq.Offset(), pq.Limit)
	return users[lo:hi], total, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, uname string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == uname || usr.Email == uname {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Username != "" {
		origUsr.Username = usr.Username
	}
	if usr.Email != "" {
		origUsr.Email = usr.Email
	}
	if usr.RoleID != 0 {
		origUsr.RoleID = usr.RoleID
		origUsr.Role = usr.Role
	}
	if isActive != nil {
		origUsr.IsActive = *isActive
	}
	return *origUsr, nil
}

func (repo *userRepository) DeactivateUser(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok || !usr.IsActive {
		return user.ErrNotFound
	}
	usr.IsActive = false
	return nil
}

func (repo *userRepository) SetPasswordHash(_ context.Context, id int, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	return nil
}

func (repo *userRepository) GetRoleByName(_ context.Context, name string) (user.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, role := range repo.db.roles {
		if role.Name == name {
			return *role, nil
		}
	}
	return user.Role{}, user.ErrRoleNotFound
}

func (repo *userRepository) QueryRoles(_ context.Context) ([]user.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	roles := make([]user.Role, 0, len(repo.db.roles))
	for _, role := range repo.db.roles {
		roles = append(roles, *role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
