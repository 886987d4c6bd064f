package assemble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobsaddah/jobharvest/internal/extract"
	"github.com/jobsaddah/jobharvest/internal/harvest"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		reply := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(reply)
	}
}

func TestRemoteNormalizerParsesRecord(t *testing.T) {
	content := `{"title":"Board Clerk Vacancy 2025","organization":"State Board","important_links":{"Apply Online":"https://example.gov.in/apply"}}`
	server := httptest.NewServer(chatReply(t, "```json\n"+content+"\n```"))
	defer server.Close()

	n := NewRemoteNormalizer(RemoteConfig{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Model:    "test-model",
	})

	doc := harvest.Parse("<h1>Board Clerk</h1>", "https://example.gov.in/jobs/clerk")
	record, err := n.Normalize(context.Background(), doc, extract.LinkHints{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Title != "Board Clerk Vacancy 2025" {
		t.Errorf("title = %q", record.Title)
	}
	if record.Organization != "State Board" {
		t.Errorf("organization = %q", record.Organization)
	}
	if record.Links["Apply Online"] != "https://example.gov.in/apply" {
		t.Errorf("links = %v", record.Links)
	}
	if record.Eligibility == nil || record.Fees == nil {
		t.Error("collections not allocated")
	}
}

func TestRemoteNormalizerFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "invalid JSON content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"choices": []map[string]interface{}{
						{"message": map[string]string{"content": "sorry, I cannot do that"}},
					},
				})
			},
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
			},
		},
		{
			name: "missing title",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"choices": []map[string]interface{}{
						{"message": map[string]string{"content": `{"organization":"X"}`}},
					},
				})
			},
		},
	}

	doc := harvest.Parse("<h1>Board Clerk</h1>", "https://example.gov.in/jobs/clerk")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			n := NewRemoteNormalizer(RemoteConfig{Endpoint: server.URL})
			if _, err := n.Normalize(context.Background(), doc, extract.LinkHints{}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
