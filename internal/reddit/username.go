package reddit

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Reddit usernames are 3-20 word characters or hyphens
	bareUsername = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	profilePath  = regexp.MustCompile(`^/(?:user|u)/([A-Za-z0-9_-]+)(?:/|$)`)
)

// ParseUsername extracts a username from a profile URL or a bare username.
// Accepted forms:
//
//	https://www.reddit.com/user/spez/
//	https://old.reddit.com/u/spez
//	u/spez, /user/spez, spez
//
// Returns ErrInvalidInput when no recognizable username is present.
func ParseUsername(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidInput)
	}

	if strings.Contains(s, "://") {
		parsed, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidInput, input)
		}
		if m := profilePath.FindStringSubmatch(parsed.Path); m != nil {
			return m[1], nil
		}
		return "", fmt.Errorf("%w: %q is not a profile URL", ErrInvalidInput, input)
	}

	// Path-only and shorthand forms
	if m := profilePath.FindStringSubmatch("/" + strings.Trim(s, "/")); m != nil {
		return m[1], nil
	}

	if bareUsername.MatchString(s) {
		return s, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidInput, input)
}

// ProfileURL returns the canonical profile URL for a username
func ProfileURL(username string) string {
	return fmt.Sprintf("https://www.reddit.com/user/%s/", username)
}
