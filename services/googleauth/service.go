package googleauthsvc

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const issuerURL = "https://accounts.google.com"

type service struct {
	verifier *oidc.IDTokenVerifier
}

var _ user.GoogleVerifier = (*service)(nil)

// NewService discovers Google's OIDC configuration and returns a verifier
// bound to the configured OAuth client ID.
func NewService(ctx context.Context) (user.GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "discovering Google OIDC provider")
	}
	return &service{
		verifier: provider.Verifier(&oidc.Config{ClientID: core.Conf.GoogleClientID}),
	}, nil
}

func (svc *service) Verify(ctx context.Context, rawIDToken string) (user.GoogleProfile, error) {
	idToken, err := svc.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return user.GoogleProfile{}, errors.Wrap(err, "verifying Google ID token")
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return user.GoogleProfile{}, errors.Wrap(err, "parsing Google ID token claims")
	}
	return user.GoogleProfile{
		GoogleID: claims.Sub,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}

// Mock resolves raw tokens from a fixed table, for tests.
type Mock struct {
	Profiles map[string]user.GoogleProfile
}

var _ user.GoogleVerifier = (*Mock)(nil)

func (m *Mock) Verify(_ context.Context, rawIDToken string) (user.GoogleProfile, error) {
	if profile, ok := m.Profiles[rawIDToken]; ok {
		return profile, nil
	}
	return user.GoogleProfile{}, errors.New("invalid Google ID token")
}
