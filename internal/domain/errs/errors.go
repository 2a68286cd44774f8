// Package errs holds the typed error taxonomy shared by the services and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and status mapping.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindForbidden      Kind = "forbidden"
	KindConfiguration  Kind = "configuration"
	KindSecurityPolicy Kind = "security_policy"
	KindTransient      Kind = "transient"
	KindValidation     Kind = "validation"
	KindUnauthorized   Kind = "unauthorized"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first typed error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// NotFound

type SuiteNotFoundError struct{ SuiteID string }

func (e *SuiteNotFoundError) Error() string { return fmt.Sprintf("suite %s not found", e.SuiteID) }
func (e *SuiteNotFoundError) Kind() Kind    { return KindNotFound }

type ProjectNotFoundError struct{ ProjectID string }

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %s not found", e.ProjectID)
}
func (e *ProjectNotFoundError) Kind() Kind { return KindNotFound }

type MockInstanceNotFoundError struct{ InstanceID string }

func (e *MockInstanceNotFoundError) Error() string {
	return fmt.Sprintf("mock instance %s not found", e.InstanceID)
}
func (e *MockInstanceNotFoundError) Kind() Kind { return KindNotFound }

// NoMockInstanceError is returned when a project has no mock instance to resolve MOCK against.
type NoMockInstanceError struct{ ProjectID string }

func (e *NoMockInstanceError) Error() string {
	return fmt.Sprintf("project %s has no mock instance", e.ProjectID)
}
func (e *NoMockInstanceError) Kind() Kind { return KindNotFound }

type RunNotFoundError struct{ RunID string }

func (e *RunNotFoundError) Error() string { return fmt.Sprintf("suite run %s not found", e.RunID) }
func (e *RunNotFoundError) Kind() Kind    { return KindNotFound }

// RouteNotFoundError means no registered mock route matched.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no mock route for %s %s", e.Method, e.Path)
}
func (e *RouteNotFoundError) Kind() Kind { return KindNotFound }

// Forbidden

type SuiteForbiddenError struct {
	SuiteID   string
	ProjectID string
}

func (e *SuiteForbiddenError) Error() string {
	return fmt.Sprintf("suite %s is not visible to project %s", e.SuiteID, e.ProjectID)
}
func (e *SuiteForbiddenError) Kind() Kind { return KindForbidden }

// Configuration

type OriginNotConfiguredError struct{ EnvKey string }

func (e *OriginNotConfiguredError) Error() string {
	return fmt.Sprintf("no origin configured for environment %s", e.EnvKey)
}
func (e *OriginNotConfiguredError) Kind() Kind { return KindConfiguration }

type InvalidOriginError struct {
	EnvKey string
	Err    error
}

func (e *InvalidOriginError) Error() string {
	return fmt.Sprintf("origin for environment %s is not a valid URL", e.EnvKey)
}
func (e *InvalidOriginError) Unwrap() error { return e.Err }
func (e *InvalidOriginError) Kind() Kind    { return KindConfiguration }

type InsecureOriginError struct {
	EnvKey string
	Scheme string
}

func (e *InsecureOriginError) Error() string {
	return fmt.Sprintf("origin for environment %s must use https, got %q", e.EnvKey, e.Scheme)
}
func (e *InsecureOriginError) Kind() Kind { return KindConfiguration }

// SecurityPolicy

type PrivateNetworkBlockedError struct{ Hostname string }

func (e *PrivateNetworkBlockedError) Error() string {
	return fmt.Sprintf("External environments cannot target localhost or private networks (host %q)", e.Hostname)
}
func (e *PrivateNetworkBlockedError) Kind() Kind { return KindSecurityPolicy }

type NoAllowedHostsError struct{}

func (e *NoAllowedHostsError) Error() string {
	return "no allowed hostnames are configured for external environments"
}
func (e *NoAllowedHostsError) Kind() Kind { return KindSecurityPolicy }

type HostNotAllowedError struct{ Hostname string }

func (e *HostNotAllowedError) Error() string {
	return fmt.Sprintf("host %q is not in the project's allowed hostnames", e.Hostname)
}
func (e *HostNotAllowedError) Kind() Kind { return KindSecurityPolicy }

// Transient

// MockStartError reports that a mock instance could not be brought up.
type MockStartError struct {
	InstanceID string
	Err        error
}

func (e *MockStartError) Error() string {
	return fmt.Sprintf("failed to start mock instance %s: %v", e.InstanceID, e.Err)
}
func (e *MockStartError) Unwrap() error { return e.Err }
func (e *MockStartError) Kind() Kind    { return KindTransient }

// Validation

type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Kind() Kind    { return KindValidation }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Access

type UnauthorizedError struct{ Reason string }

func (e *UnauthorizedError) Error() string { return "unauthorized: " + e.Reason }
func (e *UnauthorizedError) Kind() Kind    { return KindUnauthorized }

type RoleForbiddenError struct {
	Required string
}

func (e *RoleForbiddenError) Error() string {
	return fmt.Sprintf("session lacks required role %s", e.Required)
}
func (e *RoleForbiddenError) Kind() Kind { return KindForbidden }

type RateLimitedError struct{ Key string }

func (e *RateLimitedError) Error() string { return "too many test runs, retry later" }
func (e *RateLimitedError) Kind() Kind    { return KindRateLimited }
