package http_mock_app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	mockroute "mock_env_server/internal/domain/model/mock_route"
	"mock_env_server/internal/domain/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyController(t *testing.T) *MockProxyController {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	reg := mockroute.NewRegistry(log)
	launcher := services.NewRegistryLauncher(reg)
	require.NoError(t, launcher.Start(context.Background(), &mockinstance.MockInstance{
		ID:        "i1",
		ProjectID: "p1",
		Config: mockinstance.InstanceConfig{RegistryKey: "project:p1", Routes: []mockroute.Route{
			{Method: "GET", Path: "/pets/:id", Response: json.RawMessage(`{"id":"{id}"}`)},
			{Method: "POST", Path: "/pets", StatusCode: 201, Headers: map[string]string{"Location": "/pets/1"}, Response: json.RawMessage(`{"id":"1"}`)},
			{Method: "DELETE", Path: "/pets/:id", StatusCode: 204},
		}},
	}))
	return NewMockProxyController(services.NewMockServeService(reg, launcher))
}

func TestMockProxyServe(t *testing.T) {
	c := proxyController(t)

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		label    string
		body     string
		location string
	}{
		{name: "get with param", method: http.MethodGet, path: "/mock/pets/9", status: 200, label: "GET /pets/:id", body: `{"id":"9"}`},
		{name: "trailing slash", method: http.MethodGet, path: "/mock/pets/9/", status: 200, label: "GET /pets/:id", body: `{"id":"9"}`},
		{name: "post status and headers", method: http.MethodPost, path: "/mock/pets", status: 201, label: "POST /pets", body: `{"id":"1"}`, location: "/pets/1"},
		{name: "head uses get route", method: http.MethodHead, path: "/mock/pets/9", status: 200, label: "GET /pets/:id"},
		{name: "empty body", method: http.MethodDelete, path: "/mock/pets/9", status: 204, label: "DELETE /pets/:id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newContext(call{method: tt.method, path: tt.path})
			c.Serve(ctx)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.label, rec.Header().Get(mockRouteHeader))
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
				assert.Equal(t, jsonContentType, rec.Header().Get("Content-Type"))
			} else {
				assert.Empty(t, rec.Body.String())
			}
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestMockProxyNotFound(t *testing.T) {
	c := proxyController(t)
	ctx, rec := newContext(call{method: http.MethodPut, path: "/mock/pets/9"})
	c.Serve(ctx)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "mock_route_not_found", body["error"])
	assert.Equal(t, "no mock route for PUT /pets/9", body["message"])
	assert.Empty(t, rec.Header().Get(mockRouteHeader))
}

func TestMockProxyRootStatus(t *testing.T) {
	c := proxyController(t)
	for _, path := range []string{"/mock", "/mock/"} {
		ctx, rec := newContext(call{method: http.MethodGet, path: path})
		c.Serve(ctx)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, []interface{}{"project:p1"}, body["entries"])
	}
}

func TestMockProxyInstanceProbe(t *testing.T) {
	c := proxyController(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "serving", path: "/mock/_instances/i1", status: http.StatusOK},
		{name: "unknown instance", path: "/mock/_instances/i2", status: http.StatusNotFound},
		{name: "no id", path: "/mock/_instances/", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newContext(call{method: http.MethodGet, path: tt.path})
			c.Serve(ctx)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			if tt.status == http.StatusOK {
				assert.Equal(t, true, body["ok"])
				assert.Equal(t, "i1", body["instanceId"])
			} else {
				assert.Equal(t, "mock_instance_not_serving", body["error"])
			}
		})
	}
}

func TestMockProxyURLPatterns(t *testing.T) {
	routes := proxyController(t).URLPatterns()
	assert.Len(t, routes, 12)
	paths := map[string]bool{}
	for _, r := range routes {
		paths[r.Path] = true
	}
	assert.True(t, paths["/mock"])
	assert.True(t, paths["/mock/{path:*}"])
}
