package decision

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePrefix strips a leading fenced-code marker line like "```json\n"
var fencePrefix = regexp.MustCompile("^```[a-zA-Z0-9]*\n")

// objectSpan locates the first '{' through the last '}' across newlines.
// Best-effort heuristic: nested braces inside surrounding free text can
// widen the span, so whatever it captures still has to parse as JSON.
var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResponse extracts and parses a JSON object from free-form model
// output. It returns nil when no object can be extracted or the extracted
// candidate is not a JSON object ("no parse").
func ParseResponse(response string) map[string]interface{} {
	candidate, ok := ExtractJSONBlock(response)
	if !ok {
		return nil
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil
	}

	object, ok := parsed.(map[string]interface{})
	if !ok {
		return nil
	}
	return object
}

// ExtractJSONBlock pulls a JSON candidate out of free text using a fixed
// three-step precedence: strip a fenced code block, else take the greedy
// first-object span, else accept the whole trimmed string when it is
// brace-delimited.
func ExtractJSONBlock(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", false
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = fencePrefix.ReplaceAllString(cleaned, "")
		if strings.HasSuffix(cleaned, "```") {
			cleaned = cleaned[:len(cleaned)-3]
		}
	}

	if match := objectSpan.FindString(cleaned); match != "" {
		return match, true
	}

	if strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}") {
		return cleaned, true
	}

	return "", false
}
