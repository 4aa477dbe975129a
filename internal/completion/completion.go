// Package completion talks to a hosted large-language-model chat endpoint.
package completion

import (
	"context"
	"errors"
)

// SystemPrompt is the fixed persona sent ahead of every composed prompt.
const SystemPrompt = "You are a helpful weather assistant that provides concise and accurate weather information. " +
	"When users ask about weather, provide relevant details about temperature, conditions, and recommendations."

// ErrEmptyResponse is returned when the provider answers without any content.
var ErrEmptyResponse = errors.New("No response content from AI")

// Completer turns a composed prompt into assistant text.
// An empty string with a nil error means the provider replied without content.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
