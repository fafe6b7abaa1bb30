package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/user"
)

func TestUserAPI_listIsStaffOnly(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	staff := env.createUser(t, "staff", "staff@x.com", "Staff123!", user.RoleAdministrative, true)
	teacher := env.createUser(t, "teach", "teach@x.com", "Teach123!", user.RoleTeacher, true)
	student := env.createUser(t, "stud", "stud@x.com", "Stud1234!", user.RoleStudent, true)

	tests := []struct {
		name     string
		caller   user.User
		wantCode int
	}{
		{"admin allowed", admin, http.StatusOK},
		{"administrative allowed", staff, http.StatusOK},
		{"teacher forbidden", teacher, http.StatusForbidden},
		{"student forbidden", student, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/users", env.getToken(t, tt.caller))
			env.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestUserAPI_listPagination(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	for i := 0; i < 5; i++ {
		env.createUser(t, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@x.com", i), "Passw0rd!", user.RoleStudent, true)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/users?page=2&limit=2", env.getToken(t, admin))
	resp := env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageData
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.Limit)
	assert.Equal(t, 6, page.Pagination.Total) // admin included
	assert.Equal(t, 3, page.Pagination.Pages)

	var users []user.User
	require.NoError(t, json.Unmarshal(page.Items, &users))
	assert.Len(t, users, 2)
}

func TestUserAPI_createIsAdminOnly(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	teacher := env.createUser(t, "teach", "teach@x.com", "Teach123!", user.RoleTeacher, true)

	body := []byte(`{"username": "newbie", "email": "newbie@x.com", "password": "Newbie123!", "role": "teacher"}`)

	req, rec := newAuthRequest(http.MethodPost, "/api/users", env.getToken(t, teacher), body)
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/api/users", env.getToken(t, admin), body)
	resp := env.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created user.User
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, user.RoleTeacher, created.Role)
}

func TestUserAPI_retrieveSelfOrAdmin(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	alice := env.createUser(t, "alice", "alice@x.com", "Alice123!", user.RoleStudent, true)
	bob := env.createUser(t, "bob", "bob@x.com", "Bobby123!", user.RoleStudent, true)

	tests := []struct {
		name     string
		caller   user.User
		targetID int
		wantCode int
	}{
		{"self", alice, alice.ID, http.StatusOK},
		{"other forbidden", alice, bob.ID, http.StatusForbidden},
		{"admin reads anyone", admin, alice.ID, http.StatusOK},
		{"admin on missing id", admin, 999, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("/api/users/%d", tt.targetID)
			req, rec := newAuthRequest(http.MethodGet, path, env.getToken(t, tt.caller))
			env.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestUserAPI_update(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	alice := env.createUser(t, "alice", "alice@x.com", "Alice123!", user.RoleStudent, true)

	// self update of email is allowed
	path := fmt.Sprintf("/api/users/%d", alice.ID)
	req, rec := newAuthRequest(http.MethodPut, path, env.getToken(t, alice), []byte(`{"email": "alice2@x.com"}`))
	resp := env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated user.User
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "alice2@x.com", updated.Email)

	// role and is_active changes are admin-only
	req, rec = newAuthRequest(http.MethodPut, path, env.getToken(t, alice), []byte(`{"role": "admin"}`))
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodPut, path, env.getToken(t, alice), []byte(`{"is_active": false}`))
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodPut, path, env.getToken(t, admin), []byte(`{"role": "teacher"}`))
	resp = env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, user.RoleTeacher, updated.Role)
}

func TestUserAPI_softDelete(t *testing.T) {
	env := setup(t)
	admin := env.createUser(t, "admin", "admin@x.com", "Admin123!", user.RoleAdmin, true)
	alice := env.createUser(t, "alice", "alice@x.com", "Alice123!", user.RoleStudent, true)
	token := env.getToken(t, admin)
	path := fmt.Sprintf("/api/users/%d", alice.ID)

	// non-admins may not delete
	req, rec := newAuthRequest(http.MethodDelete, path, env.getToken(t, alice))
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admins may not delete themselves
	req, rec = newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), token)
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, path, token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	// soft delete: the row stays, deactivated
	refreshed, err := env.usrRepo.GetUserByID(req.Context(), alice.ID)
	require.NoError(t, err)
	assert.False(t, refreshed.IsActive)

	// repeated delete is a 404, not a crash
	req, rec = newAuthRequest(http.MethodDelete, path, token)
	env.do(req, rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserAPI_changePassword(t *testing.T) {
	env := setup(t)
	alice := env.createUser(t, "alice", "alice@x.com", "Alice123!", user.RoleStudent, true)
	token := env.getToken(t, alice)

	// wrong current password
	body := []byte(`{"old_password": "nope", "new_password": "Fresh123!"}`)
	req, rec := newAuthRequest(http.MethodPost, "/api/users/change-password", token, body)
	resp := env.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Errors, "old_password")

	// weak new password
	body = []byte(`{"old_password": "Alice123!", "new_password": "weak"}`)
	req, rec = newAuthRequest(http.MethodPost, "/api/users/change-password", token, body)
	resp = env.do(req, rec)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Errors, "new_password")

	body = []byte(`{"old_password": "Alice123!", "new_password": "Fresh123!"}`)
	req, rec = newAuthRequest(http.MethodPost, "/api/users/change-password", token, body)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	// the new password works, the old one does not
	req, rec = newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": "alice", "password": "Fresh123!"}`))
	env.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodPost, "/api/auth/login", []byte(`{"username": "alice", "password": "Alice123!"}`))
	env.do(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
