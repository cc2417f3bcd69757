package model

// RequiredFields lists the provider fields a search hit must carry to be
// considered a story candidate. Hits missing any of them are discarded
// during extraction.
var RequiredFields = []string{
	"snippet",
	"url",
	"isFamilyFriendly",
	"name",
	"datePublishedFreshnessText",
	"datePublished",
}

// Candidate is a single search-result item considered as a story source.
// Raw preserves the full provider payload, including fields beyond the
// required set, so they can be merged into the archive entry later.
type Candidate struct {
	Title          string `json:"name"`
	URL            string `json:"url"`
	Snippet        string `json:"snippet"`
	DatePublished  string `json:"datePublished"`
	Freshness      string `json:"datePublishedFreshnessText"`
	FamilyFriendly bool   `json:"isFamilyFriendly"`

	Raw map[string]any `json:"-"`
}

// RankedCandidate is a Candidate with its editorial-fit score attached.
// Created once by the ranking stage and immutable afterward.
type RankedCandidate struct {
	Candidate
	Rank        float64 `json:"ranking"`
	Explanation string  `json:"explanation"`
}

// ChosenStory is the highest-ranked candidate whose fetched text passed the
// length and suitability gates. Selected at most once per run.
type ChosenStory struct {
	RankedCandidate
	Text string `json:"-"`
}
