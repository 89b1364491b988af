package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const (
	defaultAdminEmail = "admin@studygroup.com"
	defaultAdminName  = "System Administrator"
)

// createAdmin creates an admin account, or promotes the existing account with
// that email to admin. The password is always (re)set.
func (cli *commandLine) createAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:              name,
			Email:             email,
			IsProfileComplete: true,
			CreatedAt:         core.NewDate(now),
		}
	}
	usr.Role = user.RoleAdmin
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
		fmt.Printf("admin account created: %s (id=%d)\n", usr.Email, usr.ID)
		return nil
	}
	if usr, err = cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	fmt.Printf("existing account promoted to admin: %s (id=%d)\n", usr.Email, usr.ID)
	return nil
}
