package project

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Older project blobs stored origins under several ad-hoc keys. The runtime only reads
// testSettings; MigrateLegacyConfig rewrites a stored blob once.
var (
	legacySandboxKeys = []string{"sandboxUrl", "sandboxOrigin", "sandbox_url"}
	legacyProdKeys    = []string{"prodUrl", "productionUrl", "prodOrigin", "prod_url"}
	legacyHostKeys    = []string{"allowedHosts", "allowed_hosts", "allowedHostnames"}
)

// MigrateLegacyConfig moves legacy origin and allow-list keys into testSettings.
// It returns the rewritten blob and whether anything changed. Values already present
// in testSettings win over legacy ones.
func MigrateLegacyConfig(raw []byte) (RawConfig, bool, error) {
	if len(raw) == 0 {
		return RawConfig(raw), false, nil
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("invalid project config: %w", err)
	}

	settings := TestSettings{EnvOrigins: map[EnvKey]string{}}
	if current, ok := doc["testSettings"]; ok {
		if err := json.Unmarshal(current, &settings); err != nil {
			return nil, false, fmt.Errorf("invalid testSettings: %w", err)
		}
		if settings.EnvOrigins == nil {
			settings.EnvOrigins = map[EnvKey]string{}
		}
	}

	changed := false
	take := func(keys []string) string {
		found := ""
		for _, k := range keys {
			v, ok := doc[k]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(v, &s) == nil && found == "" {
				found = strings.TrimSpace(s)
			}
			delete(doc, k)
			changed = true
		}
		return found
	}

	if v := take(legacySandboxKeys); v != "" {
		if _, ok := settings.EnvOrigins[EnvSandbox]; !ok {
			settings.EnvOrigins[EnvSandbox] = v
		}
	}
	if v := take(legacyProdKeys); v != "" {
		if _, ok := settings.EnvOrigins[EnvProd]; !ok {
			settings.EnvOrigins[EnvProd] = v
		}
	}

	for _, k := range legacyHostKeys {
		v, ok := doc[k]
		if !ok {
			continue
		}
		var hosts []string
		if json.Unmarshal(v, &hosts) == nil {
			settings.AllowedHostnames = mergeHosts(settings.AllowedHostnames, hosts)
		}
		delete(doc, k)
		changed = true
	}

	if nested, ok := doc["testing"]; ok {
		var testing struct {
			Origins map[string]string `json:"origins"`
		}
		if json.Unmarshal(nested, &testing) == nil && len(testing.Origins) > 0 {
			for name, origin := range testing.Origins {
				key, err := ParseEnvKey(legacyEnvName(name))
				if err != nil || !key.IsExternal() {
					continue
				}
				if _, exists := settings.EnvOrigins[key]; !exists {
					settings.EnvOrigins[key] = strings.TrimSpace(origin)
				}
			}
			delete(doc, "testing")
			changed = true
		}
	}

	if !changed {
		return RawConfig(raw), false, nil
	}
	if len(settings.EnvOrigins) == 0 {
		settings.EnvOrigins = nil
	}
	encoded, err := json.Marshal(settings)
	if err != nil {
		return nil, false, err
	}
	doc["testSettings"] = encoded
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, false, err
	}
	return RawConfig(out), true, nil
}

func legacyEnvName(name string) string {
	switch strings.ToLower(name) {
	case "production":
		return string(EnvProd)
	default:
		return name
	}
}

func mergeHosts(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[strings.ToLower(h)] = true
	}
	for _, h := range extra {
		h = strings.TrimSpace(h)
		if h == "" || seen[strings.ToLower(h)] {
			continue
		}
		seen[strings.ToLower(h)] = true
		existing = append(existing, h)
	}
	return existing
}
