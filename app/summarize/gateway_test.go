package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeClient struct {
	response string
	err      error

	lastContent      string
	lastInstructions string
}

func (f *fakeClient) Generate(_ context.Context, content, instructions string) (string, error) {
	f.lastContent = content
	f.lastInstructions = instructions
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGateway_MissingCredential(t *testing.T) {
	gateway := NewGateway(nil)

	got := gateway.Summarize(context.Background(), "anything", "instructions")
	if got != MissingCredentialMessage {
		t.Errorf("Nil client should yield the fixed message, got %q", got)
	}
}

func TestGateway_SuccessVerbatim(t *testing.T) {
	client := &fakeClient{response: "A good summary."}
	gateway := NewGateway(client)

	got := gateway.Summarize(context.Background(), "content", "instructions")
	if got != "A good summary." {
		t.Errorf("Backend response should pass through verbatim, got %q", got)
	}
	if client.lastContent != "content" || client.lastInstructions != "instructions" {
		t.Errorf("Prompt pair not forwarded: %q / %q", client.lastContent, client.lastInstructions)
	}
}

func TestGateway_QuotaErrorsUseFallback(t *testing.T) {
	quotaErrors := []string{
		"googleapi: Error 429: Resource has been exhausted",
		"quota exceeded for this project",
		"RESOURCE EXHAUSTED",
		"QUOTA limit reached",
	}

	for _, msg := range quotaErrors {
		gateway := NewGateway(&fakeClient{err: errors.New(msg)})

		got := gateway.Summarize(context.Background(), "a github repository is trending", "")
		if strings.HasPrefix(got, "Summarization error:") {
			t.Errorf("Quota error %q should route to the fallback responder, got %q", msg, got)
		}
		if got == "" {
			t.Errorf("Fallback response should never be empty for %q", msg)
		}
	}
}

func TestGateway_OtherErrorsInline(t *testing.T) {
	gateway := NewGateway(&fakeClient{err: errors.New("network unreachable")})

	got := gateway.Summarize(context.Background(), "content", "")
	if got != "Summarization error: network unreachable" {
		t.Errorf("Non-quota error should become an inline error string, got %q", got)
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		msg   string
		quota bool
	}{
		{"Error 429", true},
		{"daily QUOTA reached", true},
		{"resource exhausted", true},
		{"connection refused", false},
		{"invalid argument", false},
	}

	for _, tt := range tests {
		if got := IsQuotaError(errors.New(tt.msg)); got != tt.quota {
			t.Errorf("IsQuotaError(%q) = %v, want %v", tt.msg, got, tt.quota)
		}
	}
}
