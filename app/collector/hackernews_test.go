package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newHackerNewsTestServer(t *testing.T, ids []int64, stories map[int64]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[")
		for i, id := range ids {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, "%d", id)
		}
		fmt.Fprint(w, "]")
	})
	for id, body := range stories {
		mux.HandleFunc(fmt.Sprintf("/item/%d.json", id), func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
	}

	return httptest.NewServer(mux)
}

func TestHackerNewsCollect(t *testing.T) {
	server := newHackerNewsTestServer(t,
		[]int64{1, 2, 3},
		map[int64]string{
			1: `{"id":1,"type":"story","title":"First story","url":"https://example.com/1","score":100,"by":"alice","descendants":42}`,
			2: `{"id":2,"type":"job","title":"A job posting","score":1,"by":"hr"}`,
			3: `{"id":3,"type":"story","title":"Ask HN: question","score":50,"descendants":7}`,
		})
	defer server.Close()

	adapter := NewHackerNewsAdapter(server.Client(), HackerNewsConfig{StoryLimit: 20})
	adapter.baseURL = server.URL

	items, err := adapter.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 stories (job filtered out), got %d", len(items))
	}

	first := items[0]
	if first.Title != "First story" {
		t.Errorf("Expected provider order preserved, got %q first", first.Title)
	}
	if first.URL != "https://example.com/1" {
		t.Errorf("External URL should be kept, got %q", first.URL)
	}
	if first.Metrics["score"] != 100 || first.Metrics["comments"] != 42 {
		t.Errorf("Metrics mismatch: %v", first.Metrics)
	}
	if first.Field("author") != "alice" {
		t.Errorf("Author mismatch: %q", first.Field("author"))
	}
	if first.Field("discussion") != "https://news.ycombinator.com/item?id=1" {
		t.Errorf("Discussion URL mismatch: %q", first.Field("discussion"))
	}

	// Story without an external URL links to its own discussion page, and a
	// missing author becomes anonymous.
	second := items[1]
	if second.URL != "https://news.ycombinator.com/item?id=3" {
		t.Errorf("URL-less story should point at its discussion page, got %q", second.URL)
	}
	if second.Field("author") != "anonymous" {
		t.Errorf("Missing author should default to anonymous, got %q", second.Field("author"))
	}
}

func TestHackerNewsCollect_CapBoundsDetailFetches(t *testing.T) {
	var detailFetches int

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[1,2,3,4,5]")
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		detailFetches++
		fmt.Fprint(w, `{"id":1,"type":"story","title":"t","url":"https://example.com","score":1,"by":"a"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewHackerNewsAdapter(server.Client(), HackerNewsConfig{StoryLimit: 2})
	adapter.baseURL = server.URL

	if _, err := adapter.Collect(context.Background()); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if detailFetches != 2 {
		t.Errorf("Expected 2 detail fetches under the cap, got %d", detailFetches)
	}
}

func TestHackerNewsCollect_FailedDetailSkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[1,2]")
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":2,"type":"story","title":"Survivor","url":"https://example.com/2","score":3,"by":"bob"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewHackerNewsAdapter(server.Client(), HackerNewsConfig{StoryLimit: 20})
	adapter.baseURL = server.URL

	items, err := adapter.Collect(context.Background())
	if err != nil {
		t.Fatalf("A failed detail fetch must not fail the batch: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Survivor" {
		t.Errorf("Expected only the surviving story, got %v", items)
	}
}

func TestHackerNewsCollect_IndexFailureFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter(server.Client(), HackerNewsConfig{StoryLimit: 20})
	adapter.baseURL = server.URL

	if _, err := adapter.Collect(context.Background()); err == nil {
		t.Error("A failed top-stories fetch should fail the source")
	}
}
