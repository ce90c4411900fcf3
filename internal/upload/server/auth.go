package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/bornholm/autosend/internal/credential"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/icholy/digest"
	"github.com/pkg/errors"
)

var errNoCredentials = errors.New("no credentials for host")

// authorizer answers a server authentication challenge with the
// credentials registered for the request host. It is kept for the whole
// run, the digest nonce count growing with each request.
type authorizer struct {
	mutex       sync.Mutex
	credentials credential.Credentials
	challenge   *digest.Challenge
	count       int
}

func (a *authorizer) Apply(req *http.Request) error {
	if a.challenge == nil {
		req.SetBasicAuth(a.credentials.Username, a.credentials.Password)
		return nil
	}

	a.mutex.Lock()
	a.count++
	count := a.count
	a.mutex.Unlock()

	cred, err := digest.Digest(a.challenge, digest.Options{
		Method:   req.Method,
		URI:      req.URL.RequestURI(),
		Username: a.credentials.Username,
		Password: a.credentials.Password,
		Count:    count,
	})
	if err != nil {
		return errors.Wrap(err, "could not compute digest credentials")
	}

	req.Header.Set("Authorization", cred.String())

	return nil
}

// renews reports whether next answers a challenge the previous
// authorization could not satisfy, i.e. a digest challenge with a new
// nonce. Anything else means the credentials were refused.
func renews(previous upload.Authorization, next *authorizer) bool {
	prev, ok := previous.(*authorizer)
	if !ok || prev.challenge == nil || next.challenge == nil {
		return false
	}

	return prev.challenge.Nonce != next.challenge.Nonce
}

func (u *Uploader) newAuthorizer(ctx context.Context, res *http.Response) (*authorizer, error) {
	creds, exists := u.credentials.Get(ctx, res.Request.URL.Hostname())
	if !exists {
		return nil, errors.WithStack(errNoCredentials)
	}

	auth := &authorizer{credentials: creds}

	for _, header := range res.Header.Values("WWW-Authenticate") {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(header)), "digest") {
			continue
		}

		challenge, err := digest.ParseChallenge(header)
		if err != nil {
			return nil, errors.Wrap(err, "could not parse digest challenge")
		}

		auth.challenge = challenge
		break
	}

	return auth, nil
}

var _ upload.Authorization = &authorizer{}
