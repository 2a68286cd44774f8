package http_mock_app

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	configs "mock_env_server/internal/infra/config"

	"github.com/emicklei/go-restful"
	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func testAuth() *SessionAuth {
	return NewSessionAuth(&configs.SecurityConfig{JWTSecret: testJWTSecret})
}

func sessionToken(t *testing.T, secret, subject, role, projectID string) string {
	claims := SessionClaims{
		Role:      role,
		ProjectID: projectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type call struct {
	method  string
	path    string
	body    string
	headers map[string]string
	params  map[string]string
}

func newContext(c call) (*rf.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	httpReq := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		httpReq.Header.Set("Content-Type", jsonContentType)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	req := restful.NewRequest(httpReq)
	for k, v := range c.params {
		req.PathParameters()[k] = v
	}
	rec := httptest.NewRecorder()
	return &rf.Context{Ctx: context.Background(), Req: req, Resp: restful.NewResponse(rec)}, rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

