package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/perm"
	"github.com/trezcool/darasa/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextObjectKey = "object"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UserID parses the user ID out of the standard Subject claim.
func (c Claims) UserID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

// TokenPair is an access token and the refresh token that can renew it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func GetUserClaims(usr user.User) *Claims {
	return getClaims(usr, core.Conf.Server.JWTExpirationDelta)
}

func getClaims(usr user.User, expDelta time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(expDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	return signToken(claims, appJWTConfig.SigningKey.([]byte))
}

// GenerateTokenPair mints an access + refresh token pair for the user.
// The two tokens carry the same claims but are signed with distinct keys
// and lifetimes.
func GenerateTokenPair(usr user.User) (TokenPair, error) {
	access, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := signToken(
		getClaims(usr, core.Conf.Server.JWTRefreshExpirationDelta),
		[]byte(core.Conf.Server.JWTRefreshSecretKey),
	)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signToken(claims *Claims, key []byte) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// verifyRefreshToken parses and validates a refresh token. An access token
// never passes since the signing keys differ.
func verifyRefreshToken(tokenStr string) (Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != appJWTConfig.SigningMethod {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(core.Conf.Server.JWTRefreshSecretKey), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errInvalidRefreshToken
	}
	return *claims, nil
}

func authenticate(ctx echo.Context, email, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errInvalidCredentials
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errInvalidCredentials
	}
	return usr, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextActor builds the permission actor from the JWT claims; no
// database round trip is needed.
func getContextActor(ctx echo.Context) (*perm.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}
	return &perm.Actor{ID: claims.UserID(), Role: claims.Role}, nil
}
