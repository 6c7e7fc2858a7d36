package persona

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"personagen/internal/model"
)

// ErrNoSections indicates the model output contained no parseable sections
var ErrNoSections = errors.New("model output contains no persona sections")

var (
	headerLine    = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	bulletLine    = regexp.MustCompile(`^[-*]\s+(.+)$`)
	permalinkRef  = regexp.MustCompile(`\((https?://[^)\s]+)\)`)
	trailingEmpty = regexp.MustCompile(`\(\s*\)`)
)

// Parser maps model output back to traits and citations
type Parser struct {
	// StrictCitations rejects output citing permalinks outside the allowlist
	StrictCitations bool
}

// NewParser creates a new parser with strict citation checking enabled
func NewParser() *Parser {
	return &Parser{StrictCitations: true}
}

// Parse converts the model's markdown draft into ordered traits.
// Trait order follows the output's section order. Each bullet's permalink
// becomes a citation; bullets keep their text with the permalink removed.
func (p *Parser) Parse(output string, allowlist []string) ([]model.Trait, error) {
	allowed := make(map[string]bool, len(allowlist))
	for _, u := range allowlist {
		allowed[u] = true
	}

	var traits []model.Trait
	var current *model.Trait

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		if m := headerLine.FindStringSubmatch(line); m != nil {
			label := strings.TrimSpace(m[1])
			if strings.EqualFold(label, "Citations") {
				// The model sometimes echoes the citations appendix; ours is rebuilt
				current = nil
				continue
			}
			traits = append(traits, model.Trait{Label: label})
			current = &traits[len(traits)-1]
			continue
		}

		if current == nil {
			continue
		}

		m := bulletLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		bullet := m[1]
		for _, ref := range permalinkRef.FindAllStringSubmatch(bullet, -1) {
			link := strings.TrimRight(ref[1], ".,;:!?")
			if p.StrictCitations && !allowed[link] {
				return nil, fmt.Errorf("citation leak: %s cites disallowed URL %s", current.Label, link)
			}
			if !containsString(current.Citations, link) {
				current.Citations = append(current.Citations, link)
			}
		}

		text := permalinkRef.ReplaceAllString(bullet, "")
		text = trailingEmpty.ReplaceAllString(text, "")
		text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "-–"))
		if text != "" {
			current.Bullets = append(current.Bullets, text)
		}
	}

	if len(traits) == 0 {
		return nil, ErrNoSections
	}

	return traits, nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
