package mockroute

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Route is one synthetic endpoint of a generated mock set.
type Route struct {
	Method     string            `json:"method" yaml:"method" validate:"required"`
	Path       string            `json:"path" yaml:"path" validate:"required,startswith=/"`
	StatusCode int               `json:"statusCode,omitempty" yaml:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers"`
	Response   json.RawMessage   `json:"response,omitempty" yaml:"response"`
}

// Entry is the registry value stored under one key.
type Entry struct {
	Routes    []Route `json:"routes"`
	LatencyMs int     `json:"latencyMs"`
}

func (e Entry) Latency() time.Duration {
	if e.LatencyMs <= 0 {
		return 0
	}
	return time.Duration(e.LatencyMs) * time.Millisecond
}

func (r *Route) Validate() error {
	if strings.TrimSpace(r.Method) == "" {
		return errors.New("route method is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("route path %q must start with /", r.Path)
	}
	if r.StatusCode != 0 && (r.StatusCode < 100 || r.StatusCode > 599) {
		return fmt.Errorf("route %s %s: invalid status code %d", r.Method, r.Path, r.StatusCode)
	}
	return nil
}

// Status returns the configured status, 200 when unset.
func (r *Route) Status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// Label is the value of the x-mock-route response header.
func (r *Route) Label() string {
	return strings.ToUpper(r.Method) + " " + r.Path
}

// Match is a successful lookup.
type Match struct {
	Key       string
	Route     Route
	Params    map[string]string
	LatencyMs int
}

func (m *Match) Latency() time.Duration {
	return Entry{LatencyMs: m.LatencyMs}.Latency()
}

// Body renders the route response with {param} placeholders substituted.
func (m *Match) Body() []byte {
	return RenderBody(m.Route.Response, m.Params)
}

// RenderBody substitutes {name} placeholders with captured path parameters.
// Values are JSON-string escaped so a placeholder inside a JSON string stays valid.
func RenderBody(body []byte, params map[string]string) []byte {
	if len(body) == 0 || len(params) == 0 {
		return body
	}
	out := string(body)
	for name, value := range params {
		escaped, err := json.Marshal(value)
		if err != nil {
			continue
		}
		out = strings.ReplaceAll(out, "{"+name+"}", string(escaped[1:len(escaped)-1]))
	}
	return []byte(out)
}
