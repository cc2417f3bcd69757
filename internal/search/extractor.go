package search

import (
	"reflect"
	"sort"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// ExtractCandidates flattens a batch of raw search payloads into an ordered,
// deduplicated list of candidates. Elements missing any required field are
// dropped; duplicates are dropped by structural equality against elements
// already accepted. Malformed input never errors, it just yields fewer
// results, so an empty slice is a valid (if terminal) outcome.
func ExtractCandidates(payloads []map[string]any) []model.Candidate {
	var accepted []map[string]any
	var out []model.Candidate

	for _, payload := range payloads {
		for _, hit := range extractValues(payload) {
			if !hasRequiredFields(hit) {
				continue
			}
			if containsEqual(accepted, hit) {
				continue
			}
			accepted = append(accepted, hit)
			out = append(out, toCandidate(hit))
		}
	}
	return out
}

// extractValues recursively walks nested maps and slices, flattening the
// elements of every list-valued "value" container. Map keys are visited in
// sorted order so extraction order is stable across runs.
func extractValues(data any) []map[string]any {
	var values []map[string]any

	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			keys := make([]string, 0, len(n))
			for key := range n {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				child := n[key]
				if key == "value" {
					if list, ok := child.([]any); ok {
						for _, el := range list {
							if m, ok := el.(map[string]any); ok {
								values = append(values, m)
							}
						}
						continue
					}
				}
				walk(child)
			}
		case []any:
			for _, el := range n {
				walk(el)
			}
		}
	}

	walk(data)
	return values
}

func hasRequiredFields(hit map[string]any) bool {
	for _, field := range model.RequiredFields {
		if _, ok := hit[field]; !ok {
			return false
		}
	}
	return true
}

func containsEqual(accepted []map[string]any, hit map[string]any) bool {
	for _, a := range accepted {
		if reflect.DeepEqual(a, hit) {
			return true
		}
	}
	return false
}

func toCandidate(hit map[string]any) model.Candidate {
	c := model.Candidate{Raw: hit}
	if v, ok := hit["name"].(string); ok {
		c.Title = v
	}
	if v, ok := hit["url"].(string); ok {
		c.URL = v
	}
	if v, ok := hit["snippet"].(string); ok {
		c.Snippet = v
	}
	if v, ok := hit["datePublished"].(string); ok {
		c.DatePublished = v
	}
	if v, ok := hit["datePublishedFreshnessText"].(string); ok {
		c.Freshness = v
	}
	if v, ok := hit["isFamilyFriendly"].(bool); ok {
		c.FamilyFriendly = v
	}
	return c
}
