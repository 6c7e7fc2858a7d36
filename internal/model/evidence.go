package model

// Evidence represents a single piece of public user activity used as
// grounding material for trait generation
type Evidence struct {
	ID         string       `json:"id"`                  // Reddit thing ID (without kind prefix)
	Kind       EvidenceKind `json:"kind"`                // post or comment
	Title      string       `json:"title,omitempty"`     // Post title, or parent link title for comments
	Text       string       `json:"text"`                // Body text (selftext for posts, body for comments)
	Subreddit  string       `json:"subreddit,omitempty"` // Subreddit name without the r/ prefix
	Permalink  string       `json:"permalink"`           // Absolute permalink on www.reddit.com
	Score      int          `json:"score"`
	CreatedUTC float64      `json:"created_utc,omitempty"`
}

// EvidenceKind classifies the type of evidence
type EvidenceKind string

const (
	EvidenceKindPost    EvidenceKind = "post"    // Submitted link or self post
	EvidenceKindComment EvidenceKind = "comment" // Comment on any submission
)

// Permalinks returns the permalink of every item, in order.
// The result is the strict allowlist of URLs the model may cite.
func Permalinks(items []Evidence) []string {
	links := make([]string, 0, len(items))
	for _, item := range items {
		links = append(links, item.Permalink)
	}
	return links
}
