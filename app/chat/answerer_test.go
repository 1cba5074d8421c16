package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haruq/dailybrief/app/extract"
	"github.com/haruq/dailybrief/app/summarize"
)

type recordingClient struct {
	lastContent string
	response    string
}

func (r *recordingClient) Generate(_ context.Context, content, _ string) (string, error) {
	r.lastContent = content
	return r.response, nil
}

func TestAnswerer_PromptAssembly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><article>linked content</article></body></html>"))
	}))
	defer server.Close()

	client := &recordingClient{response: "the answer"}
	extractor := extract.NewExtractor(server.Client(), "test-agent")
	answerer := NewAnswerer(extractor, summarize.NewGateway(client))

	digest := fmt.Sprintf("## Story\n\n[Read Article](%s/article)", server.URL)

	got := answerer.Answer(context.Background(), digest, "what is this about?", "earlier exchange")
	if got != "the answer" {
		t.Errorf("Expected the backend answer, got %q", got)
	}

	prompt := client.lastContent

	// Section order: article, link contents, history, question.
	sections := []string{
		"[Article]",
		digest,
		"[Content of links found in the article or the question] (retrieval may be incomplete)",
		fmt.Sprintf("- Content from %s/article:\n\n'''linked content'''", server.URL),
		"[Chat history]",
		"'''\nearlier exchange\n'''",
		"[New question from the user]",
		"'''\nwhat is this about?\n'''",
	}
	lastIdx := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		if idx == -1 {
			t.Fatalf("Prompt missing section %q:\n%s", section, prompt)
		}
		if idx < lastIdx {
			t.Errorf("Section %q out of order in prompt", section)
		}
		lastIdx = idx
	}
}

func TestAnswerer_EmptyHistoryMarker(t *testing.T) {
	client := &recordingClient{response: "ok"}
	extractor := extract.NewExtractor(http.DefaultClient, "test-agent")
	answerer := NewAnswerer(extractor, summarize.NewGateway(client))

	answerer.Answer(context.Background(), "no links here", "question", "")

	if !strings.Contains(client.lastContent, "[Chat history]\n\n'''\nNone\n'''") {
		t.Errorf("Empty history should render as the None marker:\n%s", client.lastContent)
	}
}

func TestAnswerer_FailedLinksSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &recordingClient{response: "ok"}
	extractor := extract.NewExtractor(server.Client(), "test-agent")
	answerer := NewAnswerer(extractor, summarize.NewGateway(client))

	digest := fmt.Sprintf("[Read Article](%s/broken)", server.URL)
	got := answerer.Answer(context.Background(), digest, "question", "")

	if got != "ok" {
		t.Errorf("A failed link fetch must not fail the answer, got %q", got)
	}
	if strings.Contains(client.lastContent, "[Content of links found") {
		t.Errorf("No additional-context section should appear when every link failed:\n%s", client.lastContent)
	}
}

func TestAnswerer_QuestionLinksIncluded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><article>question page</article></body></html>"))
	}))
	defer server.Close()

	client := &recordingClient{response: "ok"}
	extractor := extract.NewExtractor(server.Client(), "test-agent")
	answerer := NewAnswerer(extractor, summarize.NewGateway(client))

	message := fmt.Sprintf("how does %s/extra relate?", server.URL)
	answerer.Answer(context.Background(), "digest without links", message, "")

	if !strings.Contains(client.lastContent, "'''question page'''") {
		t.Errorf("Links in the question should contribute context:\n%s", client.lastContent)
	}
}
