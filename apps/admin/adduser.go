package main

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, role, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	r, err := cli.usrRepo.GetRoleByName(ctx, role)
	if err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			RoleID:    r.ID,
			Role:      r.Name,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Username = uname
	usr.Email = email
	usr.RoleID = r.ID
	usr.Role = r.Name
	isActive := true
	if _, err := cli.usrRepo.UpdateUser(ctx, usr, &isActive); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.usrRepo.SetPasswordHash(ctx, usr.ID, usr.PasswordHash)
}
