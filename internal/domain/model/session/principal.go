package session

import (
	"strings"

	testsuite "mock_env_server/internal/domain/model/test_suite"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject   string
	Role      testsuite.Actor
	Roles     []string
	ProjectID string
}

// HasRole reports whether the principal carries role, either as its primary role
// or in its role list.
func (p *Principal) HasRole(role testsuite.Actor) bool {
	if p == nil {
		return false
	}
	if p.Role == role {
		return true
	}
	for _, r := range p.Roles {
		if strings.EqualFold(r, string(role)) {
			return true
		}
	}
	return false
}
