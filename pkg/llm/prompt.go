package llm

import (
	"fmt"
	"strings"
)

const namingSystemMessage = "You are a branding expert who invents business names. " +
	"Respond with a JSON array of name strings and nothing else."

// modeInstructions steer the prompt per generation mode.
var modeInstructions = map[string]string{
	"creative":     "Favor playful, unexpected wordplay and coined words.",
	"professional": "Favor serious, trustworthy names suitable for enterprise clients.",
	"brandable":    "Favor short, pronounceable, invented names with available-sounding spellings.",
	"tech-focused": "Favor names that signal software, data, or engineering.",
}

// BuildNamingPrompt renders the user prompt for one generation call.
func BuildNamingPrompt(req GenerateRequest) string {
	count := req.Count
	if count <= 0 {
		count = DefaultNameCount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d business name ideas for the following business:\n\n%s\n\n",
		count, strings.TrimSpace(req.Description))

	if instruction, ok := modeInstructions[req.Mode]; ok {
		b.WriteString(instruction)
		b.WriteString("\n")
	}
	if req.DeepThinking {
		b.WriteString("Think carefully about the target audience and competitive landscape before answering.\n")
	}
	b.WriteString(`Return a JSON array of strings, e.g. ["First Name", "Second Name"].`)

	return b.String()
}
