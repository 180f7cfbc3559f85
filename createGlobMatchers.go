package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

type GlobMatcher struct {
	globPattern                        glob.Glob
	inputString                        string
	shouldMatchAnyFileOrDirWithPattern bool
	patternRoot                        string
	isAdditional                       bool
	negated                            bool
}

// CreateGlobMatchers compiles path patterns relative to patternsRoot.
// A leading `!` marks the pattern as negated; negated matchers are ignored by
// MatchesAnyGlobMatcher and act as exclusions in SelectedByGlobMatchers.
func CreateGlobMatchers(patterns []string, patternsRoot string) ([]GlobMatcher, error) {
	globMatchers := []GlobMatcher{}
	patternRootNorm := NormalizePathForInternal(patternsRoot)
	if patternRootNorm != "" && !strings.HasSuffix(patternRootNorm, "/") {
		patternRootNorm = patternRootNorm + "/"
	}

	for _, rawPattern := range patterns {
		pattern := strings.TrimSpace(rawPattern)
		negated := false
		if strings.HasPrefix(pattern, "!") {
			negated = true
			pattern = strings.TrimPrefix(pattern, "!")
		}
		if pattern == "" {
			return nil, fmt.Errorf("empty glob pattern in %q", patterns)
		}

		// .gitignore semantics: an entry without `/` or `*` matches any file or directory with that exact name
		shouldMatchAnyFileOrDirWithPattern := !strings.Contains(pattern, "/") && !strings.ContainsAny(pattern, "*?[{")

		if strings.HasSuffix(pattern, "/") && !strings.Contains(pattern, "*") {
			// entry with `/` suffix matches whole directory recursively
			pattern = "**" + pattern + "**"
		}

		patternNorm := NormalizeGlobPattern(pattern)

		compiled, err := glob.Compile(patternNorm, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", rawPattern, err)
		}

		globMatchers = append(globMatchers, GlobMatcher{
			globPattern:                        compiled,
			inputString:                        patternNorm,
			patternRoot:                        patternRootNorm,
			shouldMatchAnyFileOrDirWithPattern: shouldMatchAnyFileOrDirWithPattern,
			negated:                            negated,
		})

		// `**/` does not match zero directories in this glob library, eg `**/*.ts` will not match `file.ts`
		// Add the pattern without the leading `**/` so root level files match as well
		if strings.HasPrefix(patternNorm, "**/") {
			additionalPattern := strings.Replace(patternNorm, "**/", "", 1)
			additionalCompiled, err := glob.Compile(additionalPattern, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern '%s': %w", rawPattern, err)
			}
			globMatchers = append(globMatchers, GlobMatcher{
				globPattern:  additionalCompiled,
				inputString:  additionalPattern,
				patternRoot:  patternRootNorm,
				isAdditional: true,
				negated:      negated,
			})
		}
	}
	return globMatchers, nil
}

// MustCreateGlobMatchers is CreateGlobMatchers for patterns known to be valid.
func MustCreateGlobMatchers(patterns []string, patternsRoot string) []GlobMatcher {
	matchers, err := CreateGlobMatchers(patterns, patternsRoot)
	if err != nil {
		panic(err)
	}
	return matchers
}

func (m GlobMatcher) matches(filePath string) bool {
	fileInternal := NormalizePathForInternal(filePath)
	fileWithoutPrefix := strings.TrimPrefix(fileInternal, m.patternRoot)

	if m.globPattern.Match(fileWithoutPrefix) {
		return true
	}
	if m.shouldMatchAnyFileOrDirWithPattern {
		if fileWithoutPrefix == m.inputString || strings.HasSuffix(fileWithoutPrefix, "/"+m.inputString) {
			return true
		}
		if strings.Contains(fileWithoutPrefix, "/"+m.inputString+"/") || strings.HasPrefix(fileWithoutPrefix, m.inputString+"/") {
			return true
		}
	}
	return false
}

// MatchesAnyGlobMatcher reports whether filePath matches any non-negated matcher.
func MatchesAnyGlobMatcher(filePath string, matchers []GlobMatcher) bool {
	for _, matcher := range matchers {
		if matcher.negated {
			continue
		}
		if matcher.matches(filePath) {
			return true
		}
	}
	return false
}

// SelectedByGlobMatchers applies include semantics: the path must match at
// least one positive matcher (when any exist) and no negated matcher.
func SelectedByGlobMatchers(filePath string, matchers []GlobMatcher) bool {
	hasPositive := false
	matchedPositive := false
	for _, matcher := range matchers {
		if matcher.negated {
			if matcher.matches(filePath) {
				return false
			}
			continue
		}
		hasPositive = true
		if !matchedPositive && matcher.matches(filePath) {
			matchedPositive = true
		}
	}
	return !hasPositive || matchedPositive
}

// GlobMatcherPatterns returns the source patterns, skipping the generated root-level variants.
func GlobMatcherPatterns(matchers []GlobMatcher) []string {
	patterns := make([]string, 0, len(matchers))
	for _, matcher := range matchers {
		if matcher.isAdditional {
			continue
		}
		p := matcher.inputString
		if matcher.negated {
			p = "!" + p
		}
		patterns = append(patterns, p)
	}
	return patterns
}
