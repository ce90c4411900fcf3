package sheets

import (
	"context"
	"net/http"

	"github.com/markbates/goth/providers/google"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Account is the Google account the submissions are sent with
type Account interface {
	Email() string
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// GoogleAccount obtains access tokens from a stored refresh token
type GoogleAccount struct {
	email        string
	refreshToken string
	provider     *google.Provider
}

func (a *GoogleAccount) Email() string {
	return a.email
}

func (a *GoogleAccount) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.provider.RefreshToken(a.refreshToken)
	if err != nil {
		return nil, errors.Wrapf(err, "could not refresh access token of '%s'", a.email)
	}

	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), nil
}

func NewGoogleAccount(email, refreshToken, clientKey, clientSecret, callbackURL string, scopes ...string) *GoogleAccount {
	return &GoogleAccount{
		email:        email,
		refreshToken: refreshToken,
		provider:     google.New(clientKey, clientSecret, callbackURL, scopes...),
	}
}

// StaticAccount uses a preconfigured HTTP client
type StaticAccount struct {
	email  string
	client *http.Client
}

func (a *StaticAccount) Email() string {
	return a.email
}

func (a *StaticAccount) HTTPClient(ctx context.Context) (*http.Client, error) {
	return a.client, nil
}

func NewStaticAccount(email string, client *http.Client) *StaticAccount {
	return &StaticAccount{
		email:  email,
		client: client,
	}
}

var (
	_ Account = &GoogleAccount{}
	_ Account = &StaticAccount{}
)
