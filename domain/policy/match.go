package policy

import (
	"regexp"
	"strings"
)

// globCache holds compiled glob patterns. It is filled once at construction
// and only read afterwards, so concurrent checks need no locking.
type globCache map[string]*regexp.Regexp

func newGlobCache(patternLists ...[]string) globCache {
	cache := make(globCache)
	for _, patterns := range patternLists {
		for _, p := range patterns {
			if strings.Contains(p, "*") {
				if _, ok := cache[p]; !ok {
					cache[p] = compileGlob(p)
				}
			}
		}
	}
	return cache
}

// compileGlob turns a pattern into an anchored regexp: every "*" becomes ".*"
// and all other characters match literally.
func compileGlob(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func (c globCache) match(pattern, value string) bool {
	re, ok := c[pattern]
	if !ok {
		re = compileGlob(pattern)
	}
	return re.MatchString(value)
}

// matchPath applies the filesystem rules in priority order:
// "*", exact, trailing-slash prefix, directory prefix, glob.
func (c globCache) matchPath(pattern, path string) bool {
	switch {
	case pattern == "*":
		return true
	case pattern == path:
		return true
	case strings.HasSuffix(pattern, "/"):
		if strings.HasPrefix(path, pattern) {
			return true
		}
	case strings.HasPrefix(path, pattern+"/"):
		return true
	}
	if strings.Contains(pattern, "*") {
		return c.match(pattern, path)
	}
	return false
}

func (c globCache) matchAnyPath(patterns []string, path string) (string, bool) {
	for _, p := range patterns {
		if c.matchPath(p, path) {
			return p, true
		}
	}
	return "", false
}

// matchEndpoint grants exact, prefix and glob matches.
func (c globCache) matchEndpoint(pattern, endpoint string) bool {
	if endpoint == pattern || strings.HasPrefix(endpoint, pattern) {
		return true
	}
	if strings.Contains(pattern, "*") {
		return c.match(pattern, endpoint)
	}
	return false
}

// matchDomain grants exact matches, "*", and "*.base" for base itself and
// any subdomain of base.
func matchDomain(pattern, domain string) bool {
	if pattern == "*" || pattern == domain {
		return true
	}
	if base, ok := strings.CutPrefix(pattern, "*."); ok {
		return domain == base || strings.HasSuffix(domain, "."+base)
	}
	return false
}

func matchAnyDomain(patterns []string, domain string) (string, bool) {
	for _, p := range patterns {
		if matchDomain(p, domain) {
			return p, true
		}
	}
	return "", false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
