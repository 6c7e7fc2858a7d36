package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"personagen/internal/model"
)

// Renderer writes personas as plain text files
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render formats a persona: trait lines first, then a citations appendix
// restating each trait's citation in the same order.
func (r *Renderer) Render(p *model.Persona) string {
	var b strings.Builder

	for _, trait := range p.Traits {
		b.WriteString(fmt.Sprintf("%s: %s\n", trait.Label, joinBullets(trait.Bullets)))
	}

	b.WriteString("\n## Citations\n")
	for _, trait := range p.Traits {
		b.WriteString(fmt.Sprintf("%s: %s\n", trait.Label, joinCitations(trait.Citations)))
	}

	return b.String()
}

// Write renders the persona to <dir>/<username>_persona.txt.
// The file is written to a temp path and renamed, so a failed run never
// leaves a partial file; re-runs overwrite the previous output.
func (r *Renderer) Write(p *model.Persona, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, p.Username+"_persona.txt")

	tmp, err := os.CreateTemp(dir, "."+p.Username+"_persona-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(r.Render(p)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write persona: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close persona file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("chmod persona file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename persona file: %w", err)
	}

	return path, nil
}

func joinBullets(bullets []string) string {
	if len(bullets) == 0 {
		return "Unknown"
	}
	return strings.Join(bullets, "; ")
}

func joinCitations(citations []string) string {
	if len(citations) == 0 {
		return model.NoEvidence
	}
	return strings.Join(citations, ", ")
}
