// Package credential provides the server credentials used to answer
// authentication challenges, indexed by host.
package credential

import "context"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Store interface {
	Get(ctx context.Context, host string) (Credentials, bool)
}

// Static is an in-memory Store
type Static map[string]Credentials

func (s Static) Get(ctx context.Context, host string) (Credentials, bool) {
	creds, exists := s[host]
	return creds, exists
}

var _ Store = Static{}
