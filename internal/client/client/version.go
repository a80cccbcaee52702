package client

import (
	"sync"

	"github.com/dmitrijs2005/jarsclient/internal/api"
)

// versionTracker remembers the newest well-formed version token seen on any
// response, successful or not.
type versionTracker struct {
	mu      sync.Mutex
	current string
}

func (t *versionTracker) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// adopt stores v if it is a version token and reports whether it did.
func (t *versionTracker) adopt(v string) bool {
	if !api.IsVersionToken(v) {
		return false
	}
	t.mu.Lock()
	t.current = v
	t.mu.Unlock()
	return true
}

func (t *versionTracker) observe(resp *api.Response) {
	if v := resp.Version(); v != "" {
		t.adopt(v)
	}
}
