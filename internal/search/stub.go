package search

import "context"

// StubSearcher returns a canned single-hit payload (for development and
// tests, when no search key is configured).
type StubSearcher struct{}

func (s *StubSearcher) Search(_ context.Context, query string) (map[string]any, error) {
	return map[string]any{
		"webPages": map[string]any{
			"value": []any{
				map[string]any{
					"name":                       "[Stub] Volunteers rebuild community greenhouse for " + query,
					"url":                        "https://example.com/stub-story",
					"snippet":                    "Neighbors came together over a weekend to rebuild the town greenhouse.",
					"datePublished":              "2024-03-05T10:15:30.0000000Z",
					"datePublishedFreshnessText": "5 hours ago",
					"isFamilyFriendly":           true,
				},
			},
		},
	}, nil
}
