package copyleaks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/backend/remote"
)

// defaultTokenLifetime applies when the login response has no expiry.
const defaultTokenLifetime = 47 * time.Hour

// loginTokenSource exchanges the account email and API key for a bearer
// token. It is wrapped in oauth2.ReuseTokenSource so a login happens only
// when the cached token expires.
type loginTokenSource struct {
	ctx         context.Context
	client      *remote.Client
	identityURL string
	email       string
	key         string
	now         func() time.Time
}

type loginRequest struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	Expires     time.Time `json:".expires"`
}

// Token implements oauth2.TokenSource.
func (s *loginTokenSource) Token() (*oauth2.Token, error) {
	req, err := remote.NewJSONRequest(s.ctx, http.MethodPost,
		remote.JoinURL(s.identityURL, "v3", "account", "login", "api"),
		loginRequest{Email: s.email, Key: s.key})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := s.client.Do(req, &resp); err != nil {
		return nil, fmt.Errorf("copyleaks login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("copyleaks login: no access token in response")
	}

	expiry := resp.Expires
	if expiry.IsZero() {
		expiry = s.now().Add(defaultTokenLifetime)
	}
	return &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}
