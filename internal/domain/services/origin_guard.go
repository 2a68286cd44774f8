package services

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/model/project"
)

var privateHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^localhost$`),
	regexp.MustCompile(`\.localhost$`),
	regexp.MustCompile(`^127\.`),
	regexp.MustCompile(`^10\.`),
	regexp.MustCompile(`^192\.168\.`),
	regexp.MustCompile(`^169\.254\.`),
	regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[01])\.`),
	regexp.MustCompile(`^0\.0\.0\.0$`),
	regexp.MustCompile(`^::1$`),
	// last label is a decimal, octal or hex number: resolvers may read the whole
	// host as an address, e.g. 2130706433, 0x7f.1 or 0177.0.0.1
	regexp.MustCompile(`(^|\.)(0x[0-9a-f]*|[0-9]+)$`),
}

// IsPrivateHost reports whether hostname is loopback, private, link-local or any
// IP literal.
func IsPrivateHost(hostname string) bool {
	h := strings.ToLower(strings.TrimSpace(hostname))
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	h = strings.TrimSuffix(h, ".")
	if h == "" {
		return true
	}
	if i := strings.IndexByte(h, '%'); i >= 0 {
		h = h[:i]
	}
	if net.ParseIP(h) != nil {
		return true
	}
	for _, p := range privateHostPatterns {
		if p.MatchString(h) {
			return true
		}
	}
	return false
}

// ValidateExternalOrigin checks a configured SANDBOX/PROD origin and returns
// scheme://host[:port]. Checks run in order: parse, https, private network,
// allow-list. The private network check comes first so no allow-list entry can
// admit a private target.
func ValidateExternalOrigin(envKey project.EnvKey, raw string, settings project.TestSettings) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &errs.InvalidOriginError{EnvKey: string(envKey), Err: err}
	}
	if u.Host == "" || u.Opaque != "" {
		return "", &errs.InvalidOriginError{EnvKey: string(envKey), Err: errMissingHost}
	}
	if u.User != nil {
		return "", &errs.InvalidOriginError{EnvKey: string(envKey), Err: errUserInfo}
	}
	if u.Scheme != "https" {
		return "", &errs.InsecureOriginError{EnvKey: string(envKey), Scheme: u.Scheme}
	}

	hostname := u.Hostname()
	if IsPrivateHost(hostname) {
		return "", &errs.PrivateNetworkBlockedError{Hostname: hostname}
	}
	if len(settings.AllowedHostnames) == 0 {
		return "", &errs.NoAllowedHostsError{}
	}
	if !settings.AllowsHost(hostname) {
		return "", &errs.HostNotAllowedError{Hostname: hostname}
	}
	return u.Scheme + "://" + u.Host, nil
}

type originError string

func (e originError) Error() string { return string(e) }

const (
	errMissingHost originError = "origin has no host"
	errUserInfo    originError = "origin must not carry credentials"
)
