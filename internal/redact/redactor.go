// Package redact keeps secrets out of logs and API responses.
package redact

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/flemzord/modesync/internal/config"
)

// Placeholder is the replacement string for redacted secrets.
const Placeholder = "***REDACTED***"

// secretKeyPattern matches map keys that likely contain secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|api_key|credential)`)

// Redactor replaces secret values in strings and maps with Placeholder.
// It matches known token formats by pattern and configured secrets by
// literal value. All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: DefaultPatterns()}
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value that should be redacted on sight.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// SetLiterals replaces every literal with values. Empty values are
// dropped.
func (r *Redactor) SetLiterals(values []string) {
	lits := slices.DeleteFunc(slices.Clone(values), func(s string) bool { return s == "" })
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = lits
}

// SyncConfig replaces the literals with the secrets of cfg: the gateway
// bearer token and every webhook secret. Call it after a reload.
func (r *Redactor) SyncConfig(cfg *config.Config) {
	r.SetLiterals(Secrets(cfg))
}

// Secrets lists the secret values held by cfg.
func Secrets(cfg *config.Config) []string {
	if cfg == nil {
		return nil
	}
	out := []string{cfg.Daemon.Auth.BearerToken}
	for _, name := range slices.Sorted(maps.Keys(cfg.Daemon.Webhooks)) {
		out = append(out, cfg.Daemon.Webhooks[name].Secret)
	}
	return out
}

// Redact replaces all known secret patterns and literal values in s with
// Placeholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, Placeholder)
	}
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, Placeholder)
		}
	}
	return s
}

// RedactMap walks a map and replaces values whose keys look like secret
// names. Other string values go through Redact. Used by the config
// display endpoint.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		if secretKeyPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				m[k] = Placeholder
				continue
			}
		}
		switch val := v.(type) {
		case map[string]any:
			r.RedactMap(val)
		case []any:
			for _, item := range val {
				if sub, ok := item.(map[string]any); ok {
					r.RedactMap(sub)
				}
			}
		case string:
			if redacted := r.Redact(val); redacted != val {
				m[k] = redacted
			}
		}
	}
}

// DefaultPatterns returns compiled patterns for the credentials modesync
// handles: bearer tokens in headers, webhook signatures and Git hosting
// tokens.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Authorization: Bearer <token>
		regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]{8,}=*`),
		// X-Signature-256: sha256=<hex>
		regexp.MustCompile(`sha256=[0-9a-fA-F]{64}`),
		// GitHub: ghp_, gho_, ghs_, github_pat_
		regexp.MustCompile(`(ghp_|gho_|ghs_|github_pat_)[a-zA-Z0-9_]{20,}`),
		// GitLab personal access token
		regexp.MustCompile(`glpat-[a-zA-Z0-9\-_]{20,}`),
	}
}
