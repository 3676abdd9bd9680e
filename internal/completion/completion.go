// Package completion sends prompts to a text-completion service. Every
// implementation makes exactly one upstream call per request and surfaces
// failures as *Error.
package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
)

// Request is a single completion call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Kind classifies a completion failure.
type Kind string

const (
	KindStatus      Kind = "status"      // non-2xx answer
	KindDecode      Kind = "decode"      // malformed body
	KindTransport   Kind = "transport"   // request never completed
	KindEmpty       Kind = "empty"       // no text in the answer
	KindUnavailable Kind = "unavailable" // no provider configured
)

// Error is a failed completion call.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s completion failed (%s)", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Disabled is the completer used when no provider is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", &Error{Provider: "none", Kind: KindUnavailable}
}

// FromConfig builds the completer selected by COMPLETION_PROVIDER.
func FromConfig(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.CompletionProvider {
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.CompletionMaxTokens), nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.CompletionMaxTokens)
	case "http":
		return NewHTTP(nil, cfg.CompletionURL), nil
	case "none", "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.CompletionProvider)
	}
}

func joinPrompt(system, prompt string) string {
	if system == "" {
		return prompt
	}
	return strings.TrimSpace(system) + "\n\n" + prompt
}
