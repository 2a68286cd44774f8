package mockroute

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var paramSegment = regexp.MustCompile(`^(?::(\w+)|\{(\w+)\})$`)

// NormalizePath cleans an incoming request path: leading slash, no trailing slash,
// no dot segments, no query string.
//
//	""              => /
//	/pets/42/       => /pets/42
//	/pets//42?x=1   => /pets/42
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// RouteShape replaces parameter segments with *.
//
//	/pets/:id            => /pets/*
//	/pets/{id}/toys/:toy => /pets/*/toys/*
func RouteShape(p string) string {
	segs := splitPath(NormalizePath(p))
	for i, s := range segs {
		if paramSegment.MatchString(s) {
			segs[i] = "*"
		}
	}
	return "/" + strings.Join(segs, "/")
}

// BuildMatchIndexKey is the key used to detect overlapping routes across registry entries.
// HEAD folds into GET because lookups do.
func BuildMatchIndexKey(method string, p string) string {
	method = strings.ToUpper(method)
	if method == "HEAD" {
		method = "GET"
	}
	return method + " " + RouteShape(p)
}

type segment struct {
	literal string
	param   string
}

type pattern struct {
	raw      string
	segments []segment
}

func compilePattern(raw string) (pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}
	p := pattern{raw: raw}
	for _, s := range splitPath(NormalizePath(raw)) {
		if m := paramSegment.FindStringSubmatch(s); m != nil {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			p.segments = append(p.segments, segment{param: name})
			continue
		}
		p.segments = append(p.segments, segment{literal: s})
	}
	return p, nil
}

// match reports whether a normalized request path matches. A parameter consumes
// exactly one non-empty segment.
func (p pattern) match(normalized string) (map[string]string, bool) {
	segs := splitPath(normalized)
	if len(segs) != len(p.segments) {
		return nil, false
	}
	var params map[string]string
	for i, s := range p.segments {
		if s.param == "" {
			if s.literal != segs[i] {
				return nil, false
			}
			continue
		}
		if segs[i] == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[s.param] = segs[i]
	}
	return params, true
}

func splitPath(normalized string) []string {
	trimmed := strings.Trim(normalized, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
