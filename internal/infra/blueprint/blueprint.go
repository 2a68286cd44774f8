// Package blueprint turns an OpenAPI document into a normalized endpoint list
// and a mock route set.
package blueprint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	mockroute "mock_env_server/internal/domain/model/mock_route"

	"github.com/getkin/kin-openapi/openapi3"
)

// Endpoint is one documented operation.
type Endpoint struct {
	Method  string          `json:"method"`
	Path    string          `json:"path"`
	Summary string          `json:"summary,omitempty"`
	Status  int             `json:"status"`
	Example json.RawMessage `json:"example,omitempty"`
}

type Blueprint struct {
	Title     string     `json:"title"`
	Version   string     `json:"version"`
	Endpoints []Endpoint `json:"endpoints"`
}

var templateParam = regexp.MustCompile(`\{([^/{}]+)\}`)

var methodOrder = map[string]int{
	http.MethodGet: 0, http.MethodPost: 1, http.MethodPut: 2, http.MethodPatch: 3,
	http.MethodDelete: 4, http.MethodHead: 5, http.MethodOptions: 6, http.MethodTrace: 7,
}

// Ingest parses a JSON or YAML OpenAPI 3 document. Endpoints are sorted by path,
// then method.
func Ingest(raw []byte) (*Blueprint, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("empty OpenAPI document")
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	bp := &Blueprint{}
	if doc.Info != nil {
		bp.Title = doc.Info.Title
		bp.Version = doc.Info.Version
	}
	if doc.Paths == nil {
		return bp, nil
	}

	for rawPath, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		path := templateParam.ReplaceAllString(rawPath, ":$1")
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			ep := Endpoint{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
				Status:  http.StatusOK,
			}
			if ep.Summary == "" {
				ep.Summary = op.OperationID
			}
			ep.Status, ep.Example = successResponse(op)
			bp.Endpoints = append(bp.Endpoints, ep)
		}
	}

	sort.Slice(bp.Endpoints, func(i, j int) bool {
		a, b := bp.Endpoints[i], bp.Endpoints[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return methodOrder[a.Method] < methodOrder[b.Method]
	})
	return bp, nil
}

// Routes converts the blueprint into mock routes. Endpoints without an example
// answer with a stub naming the operation.
func (b *Blueprint) Routes() []mockroute.Route {
	routes := make([]mockroute.Route, 0, len(b.Endpoints))
	for _, ep := range b.Endpoints {
		body := ep.Example
		if len(body) == 0 {
			body, _ = json.Marshal(map[string]string{
				"method":  ep.Method,
				"path":    ep.Path,
				"summary": ep.Summary,
			})
		}
		routes = append(routes, mockroute.Route{
			Method:     ep.Method,
			Path:       ep.Path,
			StatusCode: ep.Status,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Response:   body,
		})
	}
	return routes
}

// successResponse picks the lowest documented 2xx status and its JSON example.
func successResponse(op *openapi3.Operation) (int, json.RawMessage) {
	if op.Responses == nil {
		return http.StatusOK, nil
	}
	best := 0
	var chosen *openapi3.Response
	for code, ref := range op.Responses.Map() {
		status, err := strconv.Atoi(code)
		if err != nil || status < 200 || status > 299 {
			continue
		}
		if best == 0 || status < best {
			best = status
			if ref != nil {
				chosen = ref.Value
			} else {
				chosen = nil
			}
		}
	}
	if best == 0 {
		return http.StatusOK, nil
	}
	return best, exampleOf(chosen)
}

func exampleOf(resp *openapi3.Response) json.RawMessage {
	if resp == nil {
		return nil
	}
	media := resp.Content.Get("application/json")
	if media == nil {
		return nil
	}
	var value interface{}
	switch {
	case media.Example != nil:
		value = media.Example
	case len(media.Examples) > 0:
		names := make([]string, 0, len(media.Examples))
		for name := range media.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		if ex := media.Examples[names[0]]; ex != nil && ex.Value != nil {
			value = ex.Value.Value
		}
	case media.Schema != nil && media.Schema.Value != nil:
		value = media.Schema.Value.Example
	}
	if value == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return b
}
