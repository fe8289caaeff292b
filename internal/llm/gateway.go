// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides a uniform retrying call contract over the two
// generative backends the pipeline uses. Callers see one Generate
// signature; backend-specific request shapes never leak past this
// package.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Params are the sampling controls common to both backends. The gateway
// normalizes naming differences (e.g. Gemini's maxOutputTokens versus
// the chat-completion max_tokens) behind this one struct.
type Params struct {
	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the generated output length.
	MaxTokens int
}

// Generator is the call contract for a single generative backend.
// Implementations return the raw reply text; an error means the call
// produced nothing usable.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// BackoffFunc maps a zero-based failure index to a sleep duration.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff sleeps 1s, 2s, 4s, ... for failures 0, 1, 2, ...
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// RetryPolicy controls how the gateway retries a failing backend.
// Tests substitute a zero-delay Backoff to avoid real sleeps.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls before giving up
	// (default 3).
	MaxAttempts int

	// Backoff computes the sleep before retry n (default exponential,
	// base 2, unit seconds).
	Backoff BackoffFunc
}

// DefaultRetryPolicy returns the production policy: 3 attempts with
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff}
}

// Gateway wraps a backend with a retry policy. An empty or
// all-whitespace reply is treated identically to a transport error:
// it consumes an attempt and triggers backoff.
type Gateway struct {
	backend Generator
	policy  RetryPolicy
}

// NewGateway builds a Gateway around backend. Zero policy fields fall
// back to the defaults.
func NewGateway(backend Generator, policy RetryPolicy) *Gateway {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.Backoff == nil {
		policy.Backoff = ExponentialBackoff
	}
	return &Gateway{backend: backend, policy: policy}
}

// Generate calls the backend, retrying per the policy. After exhausting
// attempts it returns a terminal error; callers must treat that as
// "stage produced nothing" and decide locally whether it is fatal.
func (g *Gateway) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	var lastErr error

	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.policy.Backoff(attempt - 1)):
			}
		}

		text, err := g.backend.Generate(ctx, prompt, p)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("empty response from backend")
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("after %d attempts: %w", g.policy.MaxAttempts, lastErr)
}
