package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type authApi struct {
	svc      *user.Service
	verifier user.GoogleVerifier
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, verifier user.GoogleVerifier) {
	api := authApi{svc: svc, verifier: verifier}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/signup", api.register) // alias
	ag.POST("/google", api.google)
	ag.POST("/refresh", api.refresh)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password", api.resetPassword)

	// authed endpoints
	pg := ag.Group("", jwt)
	pg.GET("/me", api.me)
	pg.POST("/logout", api.logout)
	pg.POST("/complete-profile", api.completeProfile)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	tokens, err := GenerateTokenPair(usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}

	return ctx.JSON(http.StatusOK, AuthResponse{User: usr, TokenPair: tokens})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	tokens, err := GenerateTokenPair(usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}

	return ctx.JSON(http.StatusCreated, AuthResponse{User: usr, TokenPair: tokens})
}

func (api *authApi) google(ctx echo.Context) error {
	var data GoogleAuthRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GoogleAuthRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	profile, err := api.verifier.Verify(ctx.Request().Context(), data.Credential)
	if err != nil {
		return errInvalidGoogleToken
	}

	usr, created, err := api.svc.GoogleSignIn(ctx.Request().Context(), profile)
	if err != nil {
		return errors.Wrap(err, "signing in with Google")
	}
	tokens, err := GenerateTokenPair(usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}

	res := GoogleAuthResponse{
		AuthResponse: AuthResponse{User: usr, TokenPair: tokens},
		IsNewUser:    created,
	}
	if created {
		res.RequiresProfileCompletion = !usr.IsProfileComplete
		return ctx.JSON(http.StatusCreated, res)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *authApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := verifyRefreshToken(data.RefreshToken)
	if err != nil {
		return err
	}
	// re-mint from the stored account so role changes take effect
	usr, err := api.svc.GetByID(ctx.Request().Context(), claims.UserID())
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errInvalidRefreshToken
		}
		return errors.Wrap(err, "finding user by ID")
	}

	tokens, err := GenerateTokenPair(usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}
	return ctx.JSON(http.StatusOK, tokens)
}

func (api *authApi) me(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), actor.ID)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *authApi) logout(ctx echo.Context) error {
	// tokens are stateless; the client drops them
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (api *authApi) completeProfile(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data user.CompleteProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteProfile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.CompleteProfile(ctx.Request().Context(), actor.ID, data)
	if err != nil {
		return errors.Wrap(err, "completing profile")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"user":    usr,
		"message": "Profile completed successfully",
	})
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{
		Message: "If this email exists in our system, you will receive a password reset link.",
	})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset successfully"})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	GoogleAuthRequest struct {
		Credential string `json:"credential" validate:"required"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	AuthResponse struct {
		User user.User `json:"user"`
		TokenPair
	}

	GoogleAuthResponse struct {
		AuthResponse
		IsNewUser                 bool `json:"isNewUser"`
		RequiresProfileCompletion bool `json:"requiresProfileCompletion,omitempty"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (gr *GoogleAuthRequest) Validate() error { return core.Validate.Struct(gr) }

func (rr *RefreshRequest) Validate() error { return core.Validate.Struct(rr) }

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}
