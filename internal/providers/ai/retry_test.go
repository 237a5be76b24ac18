package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

func TestWithRetryRetriesTransientErrors(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	stub.run = func(ctx context.Context, model string, params Params) (string, error) {
		if stub.calls < 3 {
			return "", fmt.Errorf("%w: flaky", domain.ErrUpstreamAI)
		}
		return "ok", nil
	}
	p := WithRetry(stub, RetryOptions{MaxAttempts: 3, InitialInterval: time.Millisecond})

	got, err := p.RunInference(context.Background(), "stub-model", Params{Prompt: "x"})
	if err != nil {
		t.Fatalf("RunInference() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("RunInference() = %q", got)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want 3", stub.calls)
	}
}

func TestWithRetryDoesNotRetryPermanentErrors(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	stub.run = func(ctx context.Context, model string, params Params) (string, error) {
		return "", fmt.Errorf("%w: bad model", domain.ErrConfiguration)
	}
	p := WithRetry(stub, RetryOptions{MaxAttempts: 5, InitialInterval: time.Millisecond})

	_, err := p.RunInference(context.Background(), "stub-model", Params{Prompt: "x"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("RunInference() error = %v, want configuration error", err)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", stub.calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	stub.run = func(ctx context.Context, model string, params Params) (string, error) {
		return "", fmt.Errorf("%w: down", domain.ErrUpstreamAI)
	}
	p := WithRetry(stub, RetryOptions{MaxAttempts: 3, InitialInterval: time.Millisecond})

	_, err := p.RunInference(context.Background(), "stub-model", Params{Prompt: "x"})
	if !errors.Is(err, domain.ErrUpstreamAI) {
		t.Fatalf("RunInference() error = %v, want upstream ai error", err)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want 3 attempts", stub.calls)
	}
}
