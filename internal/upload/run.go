package upload

import (
	"net/http"
	"sync"

	"github.com/bornholm/autosend/internal/preference"
)

// Run carries the values shared by every submission of a single
// invocation. It is discarded at the end of the run.
type Run struct {
	ID          string
	DeviceID    string
	Preferences preference.View
	Remap       *Remap
	Auth        *Authorizations
}

func NewRun(id string, deviceID string, prefs preference.View) *Run {
	return &Run{
		ID:          id,
		DeviceID:    deviceID,
		Preferences: prefs,
		Remap:       NewRemap(),
		Auth:        NewAuthorizations(),
	}
}

// Remap caches the effective submission URLs learned from redirects and
// authentication exchanges.
type Remap struct {
	mutex   sync.RWMutex
	targets map[string]string
}

// Lookup returns the effective URL learned for the given one
func (r *Remap) Lookup(original string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	effective, exists := r.targets[original]
	return effective, exists
}

// Resolve returns the effective URL for the given one, or the URL itself
// when nothing was learned.
func (r *Remap) Resolve(original string) string {
	if effective, exists := r.Lookup(original); exists {
		return effective
	}

	return original
}

// Learn records the URL that answered for the original one. Identity
// entries are kept: they mark URLs already validated during the run.
func (r *Remap) Learn(original, effective string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.targets[original] = effective
}

func (r *Remap) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.targets)
}

func NewRemap() *Remap {
	return &Remap{
		targets: make(map[string]string),
	}
}

// Authorization adds negotiated credentials to a request
type Authorization interface {
	Apply(req *http.Request) error
}

// Authorizations keeps, per host, the credentials negotiated during the run
// so that later requests send them up front.
type Authorizations struct {
	mutex  sync.RWMutex
	byHost map[string]Authorization
}

func (a *Authorizations) Lookup(host string) (Authorization, bool) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	auth, exists := a.byHost[host]
	return auth, exists
}

func (a *Authorizations) Remember(host string, auth Authorization) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.byHost[host] = auth
}

func (a *Authorizations) Forget(host string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	delete(a.byHost, host)
}

func NewAuthorizations() *Authorizations {
	return &Authorizations{
		byHost: make(map[string]Authorization),
	}
}
