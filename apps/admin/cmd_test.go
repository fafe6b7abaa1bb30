package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	usrRepo = inmemdb.NewUserRepository(inmemdb.NewDB())

	// exec stays nil; user commands only touch the repository
	return &commandLine{usrRepo: usrRepo}
}

func createUser(t *testing.T, uname, email, pwd, role string) user.User {
	t.Helper()
	ctx := context.Background()

	r, err := usrRepo.GetRoleByName(ctx, role)
	if err != nil {
		t.Fatalf("GetRoleByName() failed: %v", err)
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		RoleID:    r.ID,
		Role:      r.Name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err = usrRepo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // fed to the password prompt
	wantErr error
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr", user.RoleStudent)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed: %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				if err := refreshedUsr.CheckPassword(tt.pwd); err != nil {
					t.Errorf("CheckPassword() failed: %v", err)
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "awe", "awe@test.cd", "mdr", user.RoleStudent)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "lol"}, wantErr: errHelp},
		{name: "username and email but no password", args: []string{"adduser", "-username", "lol", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"adduser", "-username", "lol", "-email", "lol@test.cd", "-role", "boss"}, pwd: "lol", wantErr: user.ErrRoleNotFound},
		{name: "create with default role", args: []string{"adduser", "-username", "lol", "-email", "lol@test.cd"}, pwd: "lol"},
		{name: "create with role", args: []string{"adduser", "-username", "mdr", "-email", "mdr@test.cd", "-role", user.RoleTeacher}, pwd: "mdr"},
		{name: "update existing user", args: []string{"adduser", "-username", existing.Username, "-email", existing.Email, "-role", user.RoleAdmin}, pwd: "brandnew"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			uname := args[3]
			usr, err := usrRepo.GetUserByUsernameOrEmail(context.Background(), uname)
			if err != nil {
				t.Fatalf("GetUserByUsernameOrEmail() failed: %v", err)
			}
			if err := usr.CheckPassword(tt.pwd); err != nil {
				t.Errorf("CheckPassword() failed: %v", err)
			}
			if !usr.IsActive {
				t.Error("expected user to be active")
			}
		})
	}

	// the update path changed the existing user's role
	usr, err := usrRepo.GetUserByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if usr.Role != user.RoleAdmin {
		t.Errorf("Role = %s, want %s", usr.Role, user.RoleAdmin)
	}
}
