package user

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/perm"
)

// Roles
const (
	RoleUser  = perm.RoleUser
	RoleAdmin = perm.RoleAdmin
)

var AllRoles = []string{RoleUser, RoleAdmin}

const hashCost = 12

type User struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	GoogleID          string    `json:"googleId,omitempty"`
	Picture           string    `json:"picture,omitempty"`
	IsProfileComplete bool      `json:"isProfileComplete"`
	PasswordHash      []byte    `json:"-"`
	CreatedAt         core.Date `json:"createdAt"`
	UpdatedAt         time.Time `json:"-"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) Actor() *perm.Actor {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &perm.Actor{ID: u.ID, Role: u.Role}
}

// Name is the id+name projection served to any authenticated user.
type Name struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewUser contains information needed to self-register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(nu.Email)
}

// AdminNewUser contains information needed by an admin to provision a User.
// The account password is generated and mailed to the new user.
type AdminNewUser struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (nu *AdminNewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleUser
	}

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role changes are admin-only; the API layer enforces that before validation.
type UpdateUser struct {
	Name  string `json:"name" validate:"omitempty,min=2"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (uu *UpdateUser) Validate(origUsr User, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(uu.Email, origUsr)
}

// CompleteProfile finishes a Google-initiated account: the user picks their
// display name and a password, flipping the account to the complete state.
type CompleteProfile struct {
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required"`
}

func (cp *CompleteProfile) Validate() error {
	cp.Name = core.CleanString(cp.Name)
	return core.Validate.Struct(cp)
}

type ResetUserPassword struct {
	UID      string `json:"uid,omitempty" validate:"required"`
	Token    string `json:"token,omitempty" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

// GoogleProfile is the identity established by a verified Google ID token.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// ContentCounts enumerates a user's authored content per type.
type ContentCounts struct {
	Topics       int `json:"topics"`
	Sessions     int `json:"sessions"`
	Interactions int `json:"interactions"`
}

func (c ContentCounts) IsZero() bool {
	return c.Topics == 0 && c.Sessions == 0 && c.Interactions == 0
}

// ContentError blocks user deletion while authored content remains; the
// caller must reassign or delete that content first.
type ContentError struct {
	Counts ContentCounts
}

func (err *ContentError) Error() string {
	details := make([]string, 0, 3)
	appendCount := func(n int, noun string) {
		if n == 0 {
			return
		}
		if n > 1 {
			noun += "s"
		}
		details = append(details, fmt.Sprintf("%d %s", n, noun))
	}
	appendCount(err.Counts.Topics, "topic")
	appendCount(err.Counts.Sessions, "session")
	appendCount(err.Counts.Interactions, "interaction")
	return fmt.Sprintf(
		"Cannot delete user: has created %s. Please reassign or delete this content first.",
		strings.Join(details, ", "),
	)
}
