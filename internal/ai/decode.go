package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes surrounding markdown code-fence markup and a leading
// "json" language tag from a model response.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}

	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)

	if rest, found := strings.CutPrefix(cleaned, "json"); found {
		cleaned = strings.TrimSpace(rest)
	}

	return cleaned
}

// DecodeOrDefault parses a model response as JSON after stripping fence
// markup. On any parse failure the fallback is returned together with the
// error, so callers can degrade to a default verdict instead of aborting.
func DecodeOrDefault[T any](raw string, fallback T) (T, error) {
	cleaned := StripFences(raw)

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return fallback, fmt.Errorf("decode model response: %w", err)
	}

	return out, nil
}
