package http_mock_app

import (
	"fmt"
	"net/http"
	"strings"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/model/session"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the payload of a session token. Tokens are issued elsewhere.
type SessionClaims struct {
	Role      string   `json:"role"`
	Roles     []string `json:"roles,omitempty"`
	ProjectID string   `json:"projectId"`
	jwt.RegisteredClaims
}

// SessionAuth turns a bearer token into a Principal.
type SessionAuth struct {
	secret []byte
}

func NewSessionAuth(c *configs.SecurityConfig) *SessionAuth {
	return &SessionAuth{secret: []byte(c.JWTSecret)}
}

func (a *SessionAuth) Principal(req *http.Request) (*session.Principal, error) {
	header := req.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, &errs.UnauthorizedError{Reason: "missing bearer token"}
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, &errs.UnauthorizedError{Reason: "invalid session token"}
	}
	if claims.Subject == "" {
		return nil, &errs.UnauthorizedError{Reason: "session token has no subject"}
	}

	return &session.Principal{
		Subject:   claims.Subject,
		Role:      testsuite.Actor(strings.ToUpper(claims.Role)),
		Roles:     claims.Roles,
		ProjectID: claims.ProjectID,
	}, nil
}

type principalHandler func(b *rf.Context, p *session.Principal)

// withPrincipal authenticates the request and requires role before calling next.
func (a *SessionAuth) withPrincipal(role testsuite.Actor, next principalHandler) func(*rf.Context) {
	return func(b *rf.Context) {
		defer recoverHandler(b)

		p, err := a.Principal(b.ReadRequest())
		if err != nil {
			writeFailure(b, err, "")
			return
		}
		if !p.HasRole(role) {
			writeFailure(b, &errs.RoleForbiddenError{Required: string(role)}, "")
			return
		}
		if p.ProjectID == "" {
			writeFailure(b, &errs.UnauthorizedError{Reason: "session is not bound to a project"}, "")
			return
		}
		next(b, p)
	}
}
