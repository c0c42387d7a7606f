// Package detector identifies the target framework by reading the
// repository's dependency manifests, never by executing anything.
package detector

import (
	"os"
	"path/filepath"
	"regexp"
)

var (
	lockRailsPattern = regexp.MustCompile(`(?m)^\s+rails \((\d+\.\d+[^)]*)\)`)
	gemfilePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`gem\s+['"]rails['"](?:\s*,\s*['"]([^'"]+)['"])?`),
		regexp.MustCompile(`gem\s+['"]railties['"](?:\s*,\s*['"]([^'"]+)['"])?`),
	}
)

// DetectRails reports whether the repository is a Rails application and the
// Rails version when one can be determined. Gemfile.lock is preferred for
// an exact version; the Gemfile declaration is the fallback.
func DetectRails(repoRoot string) (bool, string) {
	if version := parseGemfileLock(filepath.Join(repoRoot, "Gemfile.lock")); version != "" {
		return true, version
	}
	return parseGemfile(filepath.Join(repoRoot, "Gemfile"))
}

// parseGemfileLock extracts the locked rails version from the specs section
func parseGemfileLock(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if match := lockRailsPattern.FindSubmatch(content); match != nil {
		return string(match[1])
	}
	return ""
}

// parseGemfile looks for a rails or railties gem declaration with an
// optional version constraint
func parseGemfile(path string) (bool, string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, ""
	}
	for _, pattern := range gemfilePatterns {
		if match := pattern.FindSubmatch(content); match != nil {
			return true, string(match[1])
		}
	}
	return false, ""
}
