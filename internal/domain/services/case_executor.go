package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"mock_env_server/internal/domain/iface"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"

	"github.com/PaesslerAG/jsonpath"
)

const (
	maxCaseBodyBytes = 1 << 20
	maxRedirects     = 5
	reasonAborted    = "run aborted"
)

// HTTPCaseExecutor runs suite cases in declared order, one request per repeat.
type HTTPCaseExecutor struct {
	client *http.Client
	config *configs.RunnerConfig
}

var _ iface.CaseExecutor = (*HTTPCaseExecutor)(nil)

func NewHTTPCaseExecutor(config *configs.RunnerConfig) *HTTPCaseExecutor {
	return &HTTPCaseExecutor{
		client: &http.Client{
			Timeout:       config.CaseTimeout,
			CheckRedirect: sameOriginRedirects,
		},
		config: config,
	}
}

// sameOriginRedirects refuses redirects that leave the resolved origin.
func sameOriginRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	first := via[0].URL
	if req.URL.Scheme != first.Scheme || !strings.EqualFold(req.URL.Host, first.Host) {
		return fmt.Errorf("redirect to %s refused", req.URL.Host)
	}
	return nil
}

// Execute stops issuing requests once ctx is done; the remaining cases are
// recorded as skipped.
func (e *HTTPCaseExecutor) Execute(ctx context.Context, baseURL string, cases []testsuite.Case) []testsuite.CaseRunResult {
	results := make([]testsuite.CaseRunResult, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		if ctx.Err() != nil {
			r := newCaseResult(i, c)
			r.Outcome = testsuite.OutcomeSkipped
			r.Reason = reasonAborted
			results = append(results, r)
			continue
		}
		results = append(results, e.runCase(ctx, baseURL, i, c))
	}
	return results
}

func newCaseResult(index int, c *testsuite.Case) testsuite.CaseRunResult {
	id := c.ID
	if id == "" {
		id = fmt.Sprintf("case-%d", index+1)
	}
	return testsuite.CaseRunResult{
		CaseID: id,
		Name:   c.Name,
		Method: caseMethod(c),
		Path:   c.Path,
	}
}

func (e *HTTPCaseExecutor) runCase(ctx context.Context, baseURL string, index int, c *testsuite.Case) testsuite.CaseRunResult {
	result := newCaseResult(index, c)
	switch {
	case c.Skip:
		result.Outcome = testsuite.OutcomeSkipped
		result.Reason = "marked skip"
		return result
	case !c.Supported():
		result.Outcome = testsuite.OutcomeSkipped
		result.Reason = fmt.Sprintf("unsupported case type %q", c.Type)
		return result
	}

	repeats := c.Repeats()
	if e.config.MaxRepeat > 0 && repeats > e.config.MaxRepeat {
		repeats = e.config.MaxRepeat
	}

	start := time.Now()
	result.Outcome = testsuite.OutcomePassed
	for attempt := 1; attempt <= repeats; attempt++ {
		result.Attempts = attempt
		status, reason := e.do(ctx, baseURL, c)
		result.StatusCode = status
		if reason != "" {
			result.Outcome = testsuite.OutcomeFailed
			if repeats > 1 {
				reason = fmt.Sprintf("attempt %d: %s", attempt, reason)
			}
			result.Reason = reason
			break
		}
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

// do issues one request and returns the status and a failure reason, empty on pass.
func (e *HTTPCaseExecutor) do(ctx context.Context, baseURL string, c *testsuite.Case) (int, string) {
	ctx, cancel := context.WithTimeout(ctx, e.config.CaseTimeout)
	defer cancel()

	var body io.Reader
	if len(c.Body) > 0 {
		body = bytes.NewReader(c.Body)
	}
	req, err := http.NewRequestWithContext(ctx, caseMethod(c), joinURL(baseURL, c.Path), body)
	if err != nil {
		return 0, fmt.Sprintf("invalid request: %v", err)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Sprintf("request timed out after %s", e.config.CaseTimeout)
		}
		return 0, fmt.Sprintf("request error: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxCaseBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Sprintf("reading response: %v", err)
	}
	return resp.StatusCode, checkExpectation(c.Expect, resp, respBody)
}

func checkExpectation(expect testsuite.Expectation, resp *http.Response, body []byte) string {
	if expect.Status != 0 {
		if resp.StatusCode != expect.Status {
			return fmt.Sprintf("expected status %d, got %d", expect.Status, resp.StatusCode)
		}
	} else if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Sprintf("expected a 2xx status, got %d", resp.StatusCode)
	}

	for _, name := range sortedKeys(expect.Headers) {
		if got := resp.Header.Get(name); got != expect.Headers[name] {
			return fmt.Sprintf("expected header %s=%q, got %q", name, expect.Headers[name], got)
		}
	}

	if expect.BodyContains != "" && !bytes.Contains(body, []byte(expect.BodyContains)) {
		return fmt.Sprintf("body does not contain %q", expect.BodyContains)
	}

	if len(expect.JSONPath) == 0 {
		return ""
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Sprintf("body is not JSON: %v", err)
	}
	for _, path := range sortedKeys(expect.JSONPath) {
		got, err := jsonpath.Get(path, doc)
		if err != nil {
			return fmt.Sprintf("jsonpath %s: %v", path, err)
		}
		if !jsonEqual(got, expect.JSONPath[path]) {
			return fmt.Sprintf("jsonpath %s: expected %v, got %v", path, expect.JSONPath[path], got)
		}
	}
	return ""
}

// jsonEqual compares two values after a JSON round trip so 1 and 1.0 are equal.
func jsonEqual(a, b interface{}) bool {
	na, errA := normalizeJSON(a)
	nb, errB := normalizeJSON(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeJSON(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = json.Unmarshal(b, &out)
	return out, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func caseMethod(c *testsuite.Case) string {
	if c.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(c.Method)
}

func joinURL(baseURL, path string) string {
	if path == "" {
		return strings.TrimRight(baseURL, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
