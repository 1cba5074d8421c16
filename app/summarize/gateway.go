package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MissingCredentialMessage is returned for every summarization request when
// no backend credential was configured. No network call is attempted.
const MissingCredentialMessage = "Summarization is disabled: no Gemini API credential is configured."

// Gateway wraps the generative backend with the degradation policy:
// missing credential short-circuits, quota exhaustion switches to the
// fallback responder, and any other backend failure becomes an inline error
// string so one failed item never aborts a batch.
type Gateway struct {
	client   Client
	fallback *Fallback
}

// NewGateway builds a gateway around client. A nil client means no
// credential is configured.
func NewGateway(client Client) *Gateway {
	return &Gateway{
		client:   client,
		fallback: NewFallback(),
	}
}

// Summarize never fails: the returned text is either the backend response, a
// canned fallback, or an inline error message.
func (g *Gateway) Summarize(ctx context.Context, content, instructions string) string {
	if g.client == nil {
		return MissingCredentialMessage
	}

	text, err := g.client.Generate(ctx, content, instructions)
	if err == nil {
		return text
	}

	if IsQuotaError(err) {
		slog.Warn("Backend quota exhausted, using fallback responder", "error", err)
		return g.fallback.Respond(content)
	}

	slog.Error("Summarization failed", "error", err)
	return fmt.Sprintf("Summarization error: %s", err)
}

// IsQuotaError reports whether err signals quota or rate-limit exhaustion.
func IsQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "exhausted")
}
