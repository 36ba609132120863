package rules

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled patterns a Matcher keeps.
const DefaultCacheSize = 512

type patternKind string

const (
	kindWildcard patternKind = "w"
	kindRegex    patternKind = "r"
)

// compiled is a cache entry. A nil re with a non-nil err marks a pattern that
// failed to compile, so it is not recompiled on every evaluation.
type compiled struct {
	re  *regexp.Regexp
	err error
}

// Matcher evaluates wildcard, substring and regex patterns. Compiled
// patterns are kept in a bounded LRU cache. A Matcher is safe for
// concurrent use.
type Matcher struct {
	logger   *slog.Logger
	patterns *lru.Cache[string, compiled]
	// reported holds the invalid regexes that were already logged
	reported *lru.Cache[string, struct{}]
}

// NewMatcher returns a Matcher caching up to size compiled patterns. A nil
// logger uses slog.Default().
func NewMatcher(size int, logger *slog.Logger) *Matcher {
	if size <= 0 {
		size = DefaultCacheSize
	}

	if logger == nil {
		logger = slog.Default()
	}

	// lru.New only fails for a non-positive size
	patterns, _ := lru.New[string, compiled](size)
	reported, _ := lru.New[string, struct{}](size)

	return &Matcher{
		logger:   logger,
		patterns: patterns,
		reported: reported,
	}
}

var defaultMatcher = sync.OnceValue(func() *Matcher {
	return NewMatcher(DefaultCacheSize, nil)
})

// WildcardMatch reports whether value matches the glob pattern using the
// package's shared Matcher.
func WildcardMatch(pattern, value string) bool {
	return defaultMatcher().Wildcard(pattern, value)
}

// SubstringMatch reports whether haystack contains needle, ignoring case. An
// empty needle matches everything.
func SubstringMatch(needle, haystack string) bool {
	if needle == "" {
		return true
	}

	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// RegexMatch searches value for pattern using the package's shared Matcher.
func RegexMatch(pattern, value string) bool {
	return defaultMatcher().Regex(pattern, value)
}

// Wildcard reports whether the whole of value matches pattern, where `*`
// stands for any run of characters and everything else is literal. Case is
// ignored. An empty pattern matches everything.
func (m *Matcher) Wildcard(pattern, value string) bool {
	if pattern == "" {
		return true
	}

	c := m.compile(kindWildcard, pattern)
	if c.err != nil {
		return false
	}

	return c.re.MatchString(value)
}

// Substring is SubstringMatch. It exists so that callers holding a Matcher
// can use all three primitives through it.
func (m *Matcher) Substring(needle, haystack string) bool {
	return SubstringMatch(needle, haystack)
}

// Regex reports whether pattern matches anywhere in value, ignoring case.
// An invalid pattern never matches and is logged the first time it is seen.
func (m *Matcher) Regex(pattern, value string) bool {
	c := m.compile(kindRegex, pattern)
	if c.err != nil {
		if ok, _ := m.reported.ContainsOrAdd(pattern, struct{}{}); !ok {
			m.logger.Warn(
				"invalid title regex, treating as non-matching",
				slog.String("pattern", pattern),
				slog.Any("error", c.err),
			)
		}

		return false
	}

	return c.re.MatchString(value)
}

// Valid reports whether pattern compiles as a title regex.
func (m *Matcher) Valid(pattern string) error {
	return m.compile(kindRegex, pattern).err
}

func (m *Matcher) compile(kind patternKind, pattern string) compiled {
	key := string(kind) + pattern

	if c, ok := m.patterns.Get(key); ok {
		return c
	}

	var expr string

	switch kind {
	case kindWildcard:
		expr = globToRegexp(pattern)
	case kindRegex:
		expr = "(?i)" + pattern
	}

	re, err := regexp.Compile(expr)

	c := compiled{re: re, err: err}

	m.patterns.Add(key, c)

	return c
}

// globToRegexp translates a glob into an anchored, case-insensitive
// expression. Only `*` is special.
func globToRegexp(pattern string) string {
	parts := strings.Split(pattern, "*")

	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}

	return `(?is)^` + strings.Join(parts, ".*") + `$`
}
