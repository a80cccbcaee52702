package api

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

var versionRe = regexp.MustCompile(common.VersionPattern)

// IsVersionToken reports whether s has the shape of a store version token.
func IsVersionToken(s string) bool {
	return versionRe.MatchString(s)
}

// MinVersion is an optional freshness precondition for reads. The zero value
// requests nothing.
type MinVersion struct {
	token   string
	current bool
}

// ExplicitVersion asks the backend to serve data at least as fresh as token.
func ExplicitVersion(token string) MinVersion {
	return MinVersion{token: token}
}

// CurrentVersion asks for data at least as fresh as the version the client
// last observed. Nothing is sent while no version is known.
func CurrentVersion() MinVersion {
	return MinVersion{current: true}
}

func (m MinVersion) IsZero() bool {
	return m.token == "" && !m.current
}

func (m MinVersion) String() string {
	switch {
	case m.current:
		return "current"
	case m.token != "":
		return m.token
	default:
		return "none"
	}
}

// Resolve returns the header value to send given the client's current
// version, or "" when no header should be sent.
func (m MinVersion) Resolve(current string) (string, error) {
	if m.current {
		return current, nil
	}
	if m.token == "" {
		return "", nil
	}
	if !IsVersionToken(m.token) {
		return "", fmt.Errorf("%w: malformed min version %q", common.ErrValidation, m.token)
	}
	return m.token, nil
}

// Header renders the precondition as an X-Min-Version header. ok is false when
// nothing should be sent.
func (m MinVersion) Header(current string) (h Header, ok bool, err error) {
	v, err := m.Resolve(current)
	if err != nil || v == "" {
		return Header{}, false, err
	}
	return Header{Name: common.MinVersionHeaderName, Value: v}, true, nil
}
