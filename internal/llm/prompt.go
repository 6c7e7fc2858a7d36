package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"personagen/internal/model"
)

const systemPrompt = "You are a helpful assistant."

// BuildPrompt constructs the default synthesis prompt. The model is told to
// emit the fixed section skeleton and to back every bullet with a permalink
// drawn only from the embedded evidence.
func BuildPrompt(username string, evidence []model.Evidence, embed int) string {
	if embed <= 0 {
		embed = 10
	}

	var posts, comments []model.Evidence
	for _, item := range evidence {
		switch item.Kind {
		case model.EvidenceKindPost:
			if len(posts) < embed {
				posts = append(posts, item)
			}
		case model.EvidenceKindComment:
			if len(comments) < embed {
				comments = append(comments, item)
			}
		}
	}

	var b strings.Builder

	b.WriteString("You are an expert in user research and persona creation. ")
	b.WriteString("Given the following Reddit posts and comments, generate a comprehensive, professional, and nuanced user persona. ")
	b.WriteString("For each characteristic, cite the specific post or comment (by permalink) that supports it. ")
	b.WriteString(fmt.Sprintf("If no evidence is found, state '%s'. ", model.NoEvidence))
	b.WriteString("Only cite permalinks that appear in the evidence below; never invent or reference any other URL. ")
	b.WriteString("The persona should capture motivations, personality traits, behavioral patterns, frustrations, goals, interests, values, writing style, and online behavior. ")
	b.WriteString("Use clear, structured formatting: each section must have a '## ' header, and details must be bullet points, each with a supporting permalink in parentheses. ")
	b.WriteString("Do not include any reasoning, instructions, or explanations; output only the persona content.\n\n")

	b.WriteString("---\n")
	b.WriteString("# Reddit User Persona\n")
	b.WriteString(fmt.Sprintf("## Name\n- %s (permalink)\n", username))
	for _, section := range model.Sections[1:] {
		b.WriteString(fmt.Sprintf("## %s\n- (detailed, with citation, or 'Unknown')\n", section))
	}
	b.WriteString("---\n\n")

	b.WriteString("POSTS: ")
	b.WriteString(marshalEvidence(posts))
	b.WriteString("\n\nCOMMENTS: ")
	b.WriteString(marshalEvidence(comments))
	b.WriteString("\n\n")

	b.WriteString("Output the persona in the above format. For each bullet point, include the supporting permalink in parentheses immediately after the trait. ")
	b.WriteString("Ensure the output is easy to parse for extracting each trait and its citation.")

	return b.String()
}

// marshalEvidence embeds items as indented JSON, the shape the model cites from
func marshalEvidence(items []model.Evidence) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
