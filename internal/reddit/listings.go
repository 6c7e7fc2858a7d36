package reddit

import (
	"encoding/json"
	"fmt"
	"strings"

	"personagen/internal/extract"
	"personagen/internal/model"
)

// listing mirrors the envelope of Reddit's Listing responses
type listing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data thing  `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// thing carries the fields shared by t1 (comment) and t3 (post) payloads
type thing struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Selftext     string  `json:"selftext"`
	SelftextHTML string  `json:"selftext_html"`
	Body         string  `json:"body"`
	BodyHTML     string  `json:"body_html"`
	LinkTitle    string  `json:"link_title"`
	Subreddit    string  `json:"subreddit"`
	Permalink    string  `json:"permalink"`
	Score        int     `json:"score"`
	CreatedUTC   float64 `json:"created_utc"`
}

var bodies = extract.NewBodyExtractor()

// parseListing converts a listing payload into evidence items
func parseListing(payload []byte, kind model.EvidenceKind) ([]model.Evidence, error) {
	var l listing
	if err := json.Unmarshal(payload, &l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]model.Evidence, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		t := child.Data

		item := model.Evidence{
			ID:         t.ID,
			Kind:       kind,
			Subreddit:  t.Subreddit,
			Permalink:  absolutePermalink(t.Permalink),
			Score:      t.Score,
			CreatedUTC: t.CreatedUTC,
		}

		switch kind {
		case model.EvidenceKindPost:
			item.Title = t.Title
			item.Text = textOrFlattened(t.Selftext, t.SelftextHTML)
		case model.EvidenceKindComment:
			item.Title = t.LinkTitle
			item.Text = textOrFlattened(t.Body, t.BodyHTML)
		}

		items = append(items, item)
	}

	return items, nil
}

// textOrFlattened prefers the markdown body, falling back to the HTML one.
// Link posts have an empty selftext but usually carry selftext_html.
func textOrFlattened(text, rawHTML string) string {
	text = strings.TrimSpace(text)
	if text != "" {
		return text
	}
	if rawHTML == "" {
		return ""
	}
	return bodies.Flatten(rawHTML)
}

// absolutePermalink makes listing permalinks absolute
func absolutePermalink(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	return "https://www.reddit.com" + p
}
