package auth

import (
	"net/http"
	"strings"
)

// Policy determines the required access level by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredLevel resolves the access level for the request.
func (p Policy) RequiredLevel(r *http.Request) (Level, bool) {
	if r == nil {
		return 0, false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/parking/sessions/me":
		return LevelUser, true
	case path == "/api/parking/sessions":
		return LevelStaff, true
	case path == "/api/parking/slots" || path == "/api/parking/zones":
		return LevelUser, true
	case path == "/api/auth/me" || path == "/api/auth/logout":
		return LevelUser, true
	case strings.HasPrefix(path, "/api/payment/"):
		return LevelUser, true
	case strings.HasPrefix(path, "/api/provisioning/"):
		return LevelAdmin, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return LevelUser, true
		}
		return LevelStaff, true
	}
	return 0, false
}
