// Package title canonicalizes window titles and scores how similar two
// titles are.
package title

import (
	"regexp"
	"strings"
)

// DefaultAppSuffixes lists the application names that window managers
// commonly append to a title (e.g. "plan.dwg - AutoCAD 2024").
var DefaultAppSuffixes = []string{
	"autocad",
	"word",
	"excel",
	"powerpoint",
	"outlook",
	"google chrome",
	"chrome",
	"mozilla firefox",
	"firefox",
	"microsoft edge",
	"visual studio code",
	"visual studio",
	"code",
}

var (
	// "(v2)", "(3)"
	parenVersionRegex = regexp.MustCompile(`\s*\(v?\d+\)\s*`)
	// "v1.2.3", "2.0"
	dottedVersionRegex = regexp.MustCompile(`\bv?\d+(?:\.\d+)+\b`)
	// "report - 2024"
	trailingYearRegex = regexp.MustCompile(`\s*-\s*\d{4}$`)
	// directory part of "c:\projects\plan.dwg" or "/home/me/plan.dwg"
	pathPrefixRegex = regexp.MustCompile(`(^|\s)(?:[a-z]:)?[\\/](?:[^\\/\s]+[\\/])*`)
)

// markers that editors add around a title to flag unsaved changes, plus
// dangling separators left over after stripping.
const trimCutset = " *●•-–—|:"

// Normalizer strips volatile decorations from window titles. It is safe for
// concurrent use.
type Normalizer struct {
	appSuffixRegex *regexp.Regexp
}

// NewNormalizer returns a Normalizer that strips the given application
// names when they trail a title after a separator.
func NewNormalizer(appSuffixes []string) *Normalizer {
	n := &Normalizer{}

	quoted := make([]string, 0, len(appSuffixes))

	for _, s := range appSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}

		quoted = append(quoted, regexp.QuoteMeta(s))
	}

	if len(quoted) > 0 {
		n.appSuffixRegex = regexp.MustCompile(
			`\s*[-–—|]\s*(?:` + strings.Join(quoted, "|") + `)(?:\W.*)?$`,
		)
	}

	return n
}

var defaultNormalizer = NewNormalizer(DefaultAppSuffixes)

// Normalize canonicalizes raw with the default application suffixes.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize lower-cases the title and removes application suffixes, version
// markers, directory prefixes and unsaved-change markers. It never fails:
// an empty title normalizes to "".
func (n *Normalizer) Normalize(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return ""
	}

	if n.appSuffixRegex != nil {
		t = n.appSuffixRegex.ReplaceAllString(t, "")
	}

	t = pathPrefixRegex.ReplaceAllString(t, "$1")
	t = parenVersionRegex.ReplaceAllString(t, " ")
	t = dottedVersionRegex.ReplaceAllString(t, "")
	t = trailingYearRegex.ReplaceAllString(t, "")

	t = strings.Join(strings.Fields(t), " ")

	return strings.Trim(t, trimCutset)
}
