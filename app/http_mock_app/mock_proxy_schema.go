package http_mock_app

import (
	"errors"
	"net/http"
	"strings"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	"mock_env_server/internal/infra/telemetry"
	"mock_env_server/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
)

const (
	mockPrefix      = "/mock"
	mockRouteHeader = "x-mock-route"
)

// MockProxyController serves /mock/* from the mock registry.
type MockProxyController struct {
	MockService iface.MockServeService
}

func NewMockProxyController(mockService iface.MockServeService) *MockProxyController {
	return &MockProxyController{MockService: mockService}
}

type routeNotFoundResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type instanceProbeResponse struct {
	OK         bool   `json:"ok"`
	InstanceID string `json:"instanceId"`
}

type mockStatusResponse struct {
	OK      bool     `json:"ok"`
	Entries []string `json:"entries"`
}

func (c *MockProxyController) Serve(b *rf.Context) {
	defer recoverHandler(b)

	req := b.ReadRequest()
	path := strings.TrimPrefix(req.URL.Path, mockPrefix)
	if path == "" {
		path = "/"
	}
	if instanceID, ok := strings.CutPrefix(path, mockinstance.ProbePathPrefix); ok {
		c.probeInstance(b, instanceID)
		return
	}

	match, err := c.MockService.Serve(b.Ctx, req.Method, path)
	telemetry.Count(telemetry.MockRequestTotal, map[string]string{
		"method":  req.Method,
		"matched": boolLabel(err == nil),
	})
	if err != nil {
		var notFound *errs.RouteNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "/":
			writeJSON(b, http.StatusOK, mockStatusResponse{OK: true, Entries: c.MockService.Entries()})
		case errors.As(err, &notFound):
			writeJSON(b, http.StatusNotFound, routeNotFoundResponse{Error: "mock_route_not_found", Message: notFound.Error()})
		default:
			utils.GetLogger().Warnf("mock request %s %s abandoned: %v", req.Method, path, err)
		}
		return
	}

	route := match.Route
	b.AddHeader(mockRouteHeader, route.Label())
	for k, v := range route.Headers {
		b.AddHeader(k, v)
	}
	body := match.Body()
	if len(body) > 0 && b.Resp.Header().Get("Content-Type") == "" {
		b.AddHeader("Content-Type", jsonContentType)
	}
	b.WriteHeader(route.Status())
	if req.Method == http.MethodHead || len(body) == 0 {
		return
	}
	if err := b.Write(body); err != nil {
		utils.GetLogger().Errorf("write mock body err: %v", err)
	}
}

// probeInstance answers the health prober for one instance.
func (c *MockProxyController) probeInstance(b *rf.Context, instanceID string) {
	instanceID = strings.Trim(instanceID, "/")
	if instanceID == "" || !c.MockService.InstanceServing(instanceID) {
		writeJSON(b, http.StatusNotFound, routeNotFoundResponse{
			Error:   "mock_instance_not_serving",
			Message: "mock instance " + instanceID + " is not serving",
		})
		return
	}
	writeJSON(b, http.StatusOK, instanceProbeResponse{OK: true, InstanceID: instanceID})
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (c *MockProxyController) URLPatterns() []rf.Route {
	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead}
	routes := make([]rf.Route, 0, len(methods)*2)
	for _, m := range methods {
		routes = append(routes,
			rf.Route{Method: m, Path: mockPrefix, ResourceFunc: c.Serve,
				Returns: []*rf.Returns{{Code: 200}}},
			rf.Route{Method: m, Path: mockPrefix + "/{path:*}", ResourceFunc: c.Serve,
				Returns: []*rf.Returns{{Code: 200}, {Code: 404}}},
		)
	}
	return routes
}
