// Package analyzer inspects a tab snapshot for things worth pointing out when
// it is listed, such as tabs open more than once.
package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabask/internal/types"
)

// NormalizeURL drops the fragment, sorts query parameters and trims a trailing
// slash so that equivalent URLs compare equal.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// Duplicates maps the index of every tab whose URL is open more than once to
// the indices of its twins, in snapshot order. Tabs without a URL are ignored.
func Duplicates(tabs []types.Tab) map[int][]int {
	groups := make(map[string][]int)
	for i, tab := range tabs {
		if tab.URL == "" {
			continue
		}
		normalized := NormalizeURL(tab.URL)
		groups[normalized] = append(groups[normalized], i)
	}

	dups := make(map[int][]int)
	for _, indices := range groups {
		if len(indices) < 2 {
			continue
		}
		for _, i := range indices {
			var others []int
			for _, j := range indices {
				if j != i {
					others = append(others, j)
				}
			}
			dups[i] = others
		}
	}
	return dups
}
