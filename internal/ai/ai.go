package ai

import "context"

// CompletionRequest describes one model call. System carries the role
// instruction, User the task prompt.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
}

// Completer is the language-model collaborator consumed by the scoring and
// validation components. The response is expected, not guaranteed, to be a
// JSON object matching the prompt's schema; callers parse with a fallback.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
