package mockroute

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type compiledRoute struct {
	route   Route
	method  string
	pattern pattern
}

type registeredEntry struct {
	key    string
	entry  Entry
	routes []compiledRoute
}

// Registry maps registry keys to generated mock sets. It is a process-local,
// rebuildable cache owned by the composition root and never a source of truth for
// instance status.
//
// Lookup precedence across keys is registration order, oldest first. Replacing a key
// moves it to the end.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registeredEntry
	order   []string
	log     logrus.FieldLogger
}

func NewRegistry(log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		entries: make(map[string]*registeredEntry),
		log:     log.WithField("component", "mock_registry"),
	}
}

// Register replaces the entry under key.
func (r *Registry) Register(key string, entry Entry) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("registry key is required")
	}
	compiled := make([]compiledRoute, 0, len(entry.Routes))
	for i := range entry.Routes {
		route := entry.Routes[i]
		if err := route.Validate(); err != nil {
			return fmt.Errorf("register %s: %w", key, err)
		}
		p, err := compilePattern(route.Path)
		if err != nil {
			return fmt.Errorf("register %s: %w", key, err)
		}
		compiled = append(compiled, compiledRoute{
			route:   route,
			method:  lookupMethod(route.Method),
			pattern: p,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.warnOverlaps(key, entry.Routes)

	if _, ok := r.entries[key]; ok {
		r.removeFromOrder(key)
	}
	r.entries[key] = &registeredEntry{key: key, entry: entry, routes: compiled}
	r.order = append(r.order, key)

	r.log.WithFields(logrus.Fields{
		"key":       key,
		"routes":    len(compiled),
		"latencyMs": entry.LatencyMs,
	}).Info("mock entry registered")
	return nil
}

// Remove drops key. Removing an unknown key is a no-op.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return
	}
	delete(r.entries, key)
	r.removeFromOrder(key)
	r.log.WithField("key", key).Info("mock entry removed")
}

// Lookup returns the first route whose method and pattern match.
func (r *Registry) Lookup(method, path string) (*Match, bool) {
	m := lookupMethod(method)
	normalized := NormalizePath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		re := r.entries[key]
		for _, cr := range re.routes {
			if cr.method != m {
				continue
			}
			params, ok := cr.pattern.match(normalized)
			if !ok {
				continue
			}
			return &Match{
				Key:       key,
				Route:     cr.route,
				Params:    params,
				LatencyMs: re.entry.LatencyMs,
			}, true
		}
	}
	return nil, false
}

// Get returns the entry stored under key.
func (r *Registry) Get(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	re, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	return re.entry, true
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// warnOverlaps logs routes that another key already serves. Caller holds the lock.
func (r *Registry) warnOverlaps(key string, routes []Route) {
	existing := make(map[string]string)
	for k, re := range r.entries {
		if k == key {
			continue
		}
		for _, cr := range re.routes {
			existing[BuildMatchIndexKey(cr.route.Method, cr.route.Path)] = k
		}
	}
	var overlaps []string
	for _, route := range routes {
		idx := BuildMatchIndexKey(route.Method, route.Path)
		if other, ok := existing[idx]; ok {
			overlaps = append(overlaps, idx+" (also in "+other+")")
		}
	}
	if len(overlaps) == 0 {
		return
	}
	sort.Strings(overlaps)
	r.log.WithFields(logrus.Fields{
		"key":      key,
		"overlaps": overlaps,
	}).Warn("mock routes overlap with other registry entries, earliest registration wins")
}

func (r *Registry) removeFromOrder(key string) {
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func lookupMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "HEAD" {
		return "GET"
	}
	return m
}
