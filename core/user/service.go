package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context, orderings ...core.DBOrdering) ([]User, error)
		QueryUserNames(ctx context.Context) ([]Name, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUserByID(ctx context.Context, id int) error
		// CountAuthoredContent tallies topics/sessions/interactions owned by the user.
		CountAuthoredContent(ctx context.Context, id int) (ContentCounts, error)
	}

	// GoogleVerifier is any service that can verify a Google ID token.
	GoogleVerifier interface {
		Verify(ctx context.Context, rawIDToken string) (GoogleProfile, error)
	}

	Service struct {
		repo Repository
		mail core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mail: mailSvc}
}

func (svc *Service) checkEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		return trapEmailExists(err)
	}
	return nil
}

// trapEmailExists maps the repository's unique-violation sentinel to a field
// error, so losing a register race reads like a sequential duplicate.
func trapEmailExists(err error) error {
	if errors.Cause(err) == ErrEmailExists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return err
}

// Register self-registers a user with the default role.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:              nu.Name,
		Email:             nu.Email,
		Role:              RoleUser,
		IsProfileComplete: true,
		CreatedAt:         core.NewDate(now),
		UpdatedAt:         now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, trapEmailExists(err)
	}
	return usr, nil
}

// Create provisions a user on behalf of an admin. A temporary password is
// generated, mailed to the new user and returned for display to the admin.
func (svc *Service) Create(ctx context.Context, nu AdminNewUser) (User, string, error) {
	now := time.Now().UTC()
	usr := User{
		Name:              nu.Name,
		Email:             nu.Email,
		Role:              nu.Role,
		IsProfileComplete: true,
		CreatedAt:         core.NewDate(now),
		UpdatedAt:         now,
	}
	tmpPwd := generateTempPassword()
	if err := usr.SetPassword(tmpPwd); err != nil {
		return User{}, "", errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, "", trapEmailExists(err)
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Your account",
		Body: fmt.Sprintf(
			"An account has been created for you.\n\nTemporary password: %s\n\nSign in at %s and change it.",
			tmpPwd, core.Conf.FrontendBaseURL,
		),
	})
	return usr, tmpPwd, nil
}

// GoogleSignIn establishes an identity from a verified Google profile.
// A first-time sign-in creates an account in the profile-incomplete state;
// created reports whether that happened.
func (svc *Service) GoogleSignIn(ctx context.Context, profile GoogleProfile) (usr User, created bool, err error) {
	usr, err = svc.repo.GetUserByEmail(ctx, core.CleanString(profile.Email, true /* lower */))
	if err == nil {
		return usr, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, false, errors.Wrap(err, "finding user by email")
	}

	now := time.Now().UTC()
	usr = User{
		Name:              profile.Name,
		Email:             core.CleanString(profile.Email, true /* lower */),
		Role:              RoleUser,
		GoogleID:          profile.GoogleID,
		Picture:           profile.Picture,
		IsProfileComplete: false, // no password yet
		CreatedAt:         core.NewDate(now),
		UpdatedAt:         now,
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, false, trapEmailExists(err)
	}
	return usr, true, nil
}

// CompleteProfile finishes a Google-initiated account with a chosen name and password.
func (svc *Service) CompleteProfile(ctx context.Context, id int, cp CompleteProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = cp.Name
	usr.IsProfileComplete = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(cp.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx, orderings...)
}

func (svc *Service) QueryNames(ctx context.Context) ([]Name, error) {
	return svc.repo.QueryUserNames(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = uu.Role
	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, trapEmailExists(err)
	}
	return usr, nil
}

// Delete removes a user account. It fails with a business-rule error when the
// target still owns content or when the actor targets their own account.
func (svc *Service) Delete(ctx context.Context, id, actorID int) error {
	if _, err := svc.repo.GetUserByID(ctx, id); err != nil {
		return err
	}
	if id == actorID {
		return core.NewValidationError(errors.New("Cannot delete your own account"))
	}

	counts, err := svc.repo.CountAuthoredContent(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting authored content")
	}
	if !counts.IsZero() {
		return &ContentError{Counts: counts}
	}
	return svc.repo.DeleteUserByID(ctx, id)
}

// RequestPasswordReset emails a reset link. ErrNotFound propagates so the
// caller can swallow it without revealing account existence.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return errors.Wrap(err, "finding user by email")
	}

	token, err := MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating reset token")
	}
	resetURL := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", core.Conf.FrontendBaseURL, EncodeUID(usr), token)

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password reset",
		Body: fmt.Sprintf(
			"Someone requested a password reset for this account.\n\nFollow this link to set a new password: %s\n\n"+
				"If this was not you, you can safely ignore this email.",
			resetURL,
		),
	})
	return nil
}

// ResetPassword sets a new password after verifying the uid+token pair.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

func generateTempPassword() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
