package exa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSearchSendsRequest(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotKey  string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"requestId":"r1","results":[{"id":"1","title":"Solar","url":"https://example.com","text":"growth","score":0.42}]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL + "/"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Search(context.Background(), SearchRequest{
		Query:          "solar",
		Category:       "company",
		IncludeDomains: []string{"example.com"},
		NumResults:     5,
		Contents:       SearchContents{Text: TextOptions{MaxCharacters: 3000}, Livecrawl: "preferred"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotPath != "/search" {
		t.Fatalf("path = %q, want /search", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("x-api-key = %q, want secret", gotKey)
	}
	if gotBody["type"] != "auto" || gotBody["category"] != "company" {
		t.Fatalf("unexpected body: %#v", gotBody)
	}
	if _, ok := gotBody["excludeDomains"]; ok {
		t.Fatalf("empty excludeDomains must be omitted: %#v", gotBody)
	}

	if len(resp.Results) != 1 || resp.Results[0].Title != "Solar" {
		t.Fatalf("unexpected results: %#v", resp.Results)
	}
	if resp.Results[0].Score == nil || *resp.Results[0].Score != 0.42 {
		t.Fatalf("score not decoded: %#v", resp.Results[0].Score)
	}
}

func TestClientContents(t *testing.T) {
	t.Parallel()

	var gotBody ContentsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.URL.Path != "/contents" {
			t.Errorf("path = %q, want /contents", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"results":[{"title":"Page","text":"body"}]}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{APIKey: "k", BaseURL: server.URL}, WithHTTPClient(server.Client()))
	resp, err := client.Contents(context.Background(), ContentsRequest{
		IDs:       []string{"https://example.com/a"},
		Text:      true,
		Livecrawl: "always",
	})
	if err != nil {
		t.Fatalf("Contents() error = %v", err)
	}
	if len(gotBody.IDs) != 1 || !gotBody.Text || gotBody.Livecrawl != "always" {
		t.Fatalf("unexpected request: %#v", gotBody)
	}
	if len(resp.Results) != 1 || resp.Results[0].Text != "body" {
		t.Fatalf("unexpected results: %#v", resp.Results)
	}
}

func TestClientHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{APIKey: "k", BaseURL: server.URL}, WithHTTPClient(server.Client()))
	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("Search() error = %v, want status=429", err)
	}
}

func TestClientRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	client := MustNew(Config{APIKey: "k"})
	if _, err := client.Search(context.Background(), SearchRequest{Query: "  "}); err == nil {
		t.Fatal("expected error for empty query")
	}
	if _, err := client.Contents(context.Background(), ContentsRequest{}); err == nil {
		t.Fatal("expected error for empty ids")
	}
}

func TestNewClientInvalidBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestClientAPIKeyFromEnvironment(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		fmt.Fprint(w, `{"results":[]}`)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{BaseURL: server.URL}, WithHTTPClient(server.Client()))

	t.Setenv(APIKeyEnv, "")
	if _, err := client.Search(context.Background(), SearchRequest{Query: "q"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Search() error = %v, want ErrMissingAPIKey", err)
	}

	t.Setenv(APIKeyEnv, "from-env")
	if _, err := client.Search(context.Background(), SearchRequest{Query: "q"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotKey != "from-env" {
		t.Fatalf("x-api-key = %q, want from-env", gotKey)
	}
}
