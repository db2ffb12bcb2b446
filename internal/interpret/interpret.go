// Package interpret decides which tab, if any, a model answer points at.
package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	directiveRe = regexp.MustCompile(`(?i)OPEN_TAB:\s*(\d+)`)
	listItemRe  = regexp.MustCompile(`(\d+)\.\s+`)
	tabRefRe    = regexp.MustCompile(`\b(?:Tab|tab) (\d+)\b|#(\d+)\b`)
)

// FindTarget returns the 0-based index of the tab the answer refers to.
//
// An explicit "OPEN_TAB: N" directive always decides the outcome: if N is out
// of range there is no target, even when the answer also contains a usable
// implicit reference. Implicit references (a numbered list item, then
// "Tab N"/"tab N"/"#N") are only honoured when the query asks to open or find
// something.
func FindTarget(answer, query string, tabCount int) (int, bool) {
	if m := directiveRe.FindStringSubmatch(answer); m != nil {
		return toIndex(m[1], tabCount)
	}

	q := strings.ToLower(query)
	if !strings.Contains(q, "open") && !strings.Contains(q, "find") {
		return -1, false
	}

	if m := listItemRe.FindStringSubmatch(answer); m != nil {
		if idx, ok := toIndex(m[1], tabCount); ok {
			return idx, true
		}
	}

	if m := tabRefRe.FindStringSubmatch(answer); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		return toIndex(n, tabCount)
	}

	return -1, false
}

// StripDirective removes every OPEN_TAB directive from answer and trims the result.
func StripDirective(answer string) string {
	return strings.TrimSpace(directiveRe.ReplaceAllString(answer, ""))
}

// toIndex converts a 1-based tab number to a 0-based index within range.
func toIndex(digits string, tabCount int) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return -1, false
	}
	idx := n - 1
	if idx < 0 || idx >= tabCount {
		return -1, false
	}
	return idx, true
}
