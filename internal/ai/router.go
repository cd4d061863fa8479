// Package ai routes prompts to the configured text-generation backend.
//
// Provider plumbing (auth, request shape, response envelope) is delegated to
// any-llm-go; this package only selects the backend, shapes the messages and
// maps SDK failures onto the local error taxonomy. The router makes exactly
// one completion call per invocation and never retries; callers own any
// retry policy.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	anyllm "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/biztools-dev/biztools/internal/circuitbreaker"
	"github.com/biztools-dev/biztools/internal/config"
)

// Generator is the capability AI-flavored tools consume.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// completeFunc runs one completion and returns the generated text.
type completeFunc func(ctx context.Context, params anyllm.CompletionParams) (string, error)

// Router dispatches Generate calls to the provider named in the config.
// Provider config is read-only here; changing providers is an administrative
// restart, not a runtime mutation.
type Router struct {
	cfg     *config.AIConfig
	breaker *circuitbreaker.Breaker

	// The backend is built lazily on first use so a router can be
	// constructed before credentials are known to be valid. complete is
	// swappable in tests.
	initOnce sync.Once
	initErr  error
	complete completeFunc
}

func NewRouter(cfg *config.AIConfig, breaker *circuitbreaker.Breaker) *Router {
	return &Router{cfg: cfg, breaker: breaker}
}

// Generate sends the prompt to the configured provider and returns the
// generated text. Credential presence is checked before any network call;
// an open circuit fails fast as a TransportError.
func (r *Router) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	model, _, err := r.providerSettings()
	if err != nil {
		return "", err
	}

	complete, err := r.prepare()
	if err != nil {
		return "", err
	}

	var messages []anyllm.Message
	if systemPrompt != "" {
		messages = append(messages, anyllm.Message{Role: anyllm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, anyllm.Message{Role: anyllm.RoleUser, Content: prompt})

	params := anyllm.CompletionParams{
		Model:    model,
		Messages: messages,
	}
	if r.cfg.MaxTokens > 0 {
		maxTokens := r.cfg.MaxTokens
		params.MaxTokens = &maxTokens
	}
	if r.cfg.Temperature != nil {
		temperature := *r.cfg.Temperature
		params.Temperature = &temperature
	}

	if r.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	var text string
	call := func() error {
		out, err := complete(ctx, params)
		if err != nil {
			return r.classify(err)
		}
		if strings.TrimSpace(out) == "" {
			return &ProviderError{Provider: r.cfg.Provider, Message: "empty completion"}
		}
		text = out
		return nil
	}

	if r.breaker != nil {
		err = r.breaker.Call(call)
	} else {
		err = call()
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", &TransportError{Provider: r.cfg.Provider, Err: err}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// providerSettings resolves the model and API key for the configured
// provider, failing with ErrMissingCredential before any network I/O.
func (r *Router) providerSettings() (model, apiKey string, err error) {
	switch r.cfg.Provider {
	case "gemini":
		if r.cfg.GeminiAPIKey == "" {
			return "", "", fmt.Errorf("gemini: %w", ErrMissingCredential)
		}
		return r.cfg.GeminiModel, r.cfg.GeminiAPIKey, nil
	case "openai":
		if r.cfg.OpenAIAPIKey == "" {
			return "", "", fmt.Errorf("openai: %w", ErrMissingCredential)
		}
		return r.cfg.OpenAIModel, r.cfg.OpenAIAPIKey, nil
	case "anthropic":
		if r.cfg.AnthropicAPIKey == "" {
			return "", "", fmt.Errorf("anthropic: %w", ErrMissingCredential)
		}
		return r.cfg.AnthropicModel, r.cfg.AnthropicAPIKey, nil
	default:
		return "", "", fmt.Errorf("unknown ai provider %q", r.cfg.Provider)
	}
}

// prepare builds the SDK backend once and wraps its Completion call.
func (r *Router) prepare() (completeFunc, error) {
	r.initOnce.Do(func() {
		if r.complete != nil {
			return
		}

		_, apiKey, err := r.providerSettings()
		if err != nil {
			r.initErr = err
			return
		}

		backend, err := createBackend(r.cfg.Provider, anyllm.WithAPIKey(apiKey))
		if err != nil {
			r.initErr = err
			return
		}

		r.complete = func(ctx context.Context, params anyllm.CompletionParams) (string, error) {
			resp, err := backend.Completion(ctx, params)
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", errors.New("no choices in completion response")
			}
			return resp.Choices[0].Message.ContentString(), nil
		}
	})
	if r.initErr != nil {
		return nil, r.initErr
	}
	return r.complete, nil
}

func createBackend(provider string, opts ...anyllm.Option) (anyllm.Provider, error) {
	switch provider {
	case "gemini":
		return gemini.New(opts...)
	case "openai":
		return openai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}

// classify maps an SDK error onto the local taxonomy: network-level failures
// become TransportError, everything else is treated as a provider response.
func (r *Router) classify(err error) error {
	var transportErr *TransportError
	var providerErr *ProviderError
	if errors.As(err, &transportErr) || errors.As(err, &providerErr) {
		return err
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &netErr) ||
		errors.As(err, &urlErr) {
		return &TransportError{Provider: r.cfg.Provider, Err: err}
	}
	return &ProviderError{Provider: r.cfg.Provider, Message: err.Error()}
}
