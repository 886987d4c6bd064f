// internal/assemble/remote.go
package assemble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jobsaddah/jobharvest/internal/extract"
	"github.com/jobsaddah/jobharvest/internal/harvest"
	"github.com/jobsaddah/jobharvest/pkg/types"
)

// RemoteNormalizer calls a chat-completions style text-generation endpoint
// to coerce a harvested document into the canonical record shape. It fails
// closed: any transport, status, or parse problem is an error and the
// ingestion unit aborts.
type RemoteNormalizer struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// RemoteConfig configures the remote normalization strategy.
type RemoteConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewRemoteNormalizer creates the remote strategy.
func NewRemoteNormalizer(cfg RemoteConfig) *RemoteNormalizer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RemoteNormalizer{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You convert recruitment-notice page content into strict JSON.
Respond with a single JSON object using exactly these keys:
title, organization, important_dates, application_fee, age_limit,
vacancy_details, eligibility, selection_process, important_links,
district_wise. Every key must be present; use empty strings, empty arrays,
or empty objects when the page has no data for a key. No prose, no markdown
fences, JSON only.`

func (n *RemoteNormalizer) Normalize(ctx context.Context, doc *harvest.RawDocument, hints extract.LinkHints) (*types.RecruitmentRecord, error) {
	payload, err := json.Marshal(chatRequest{
		Model: n.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(doc, hints)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("normalization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("normalization service returned HTTP %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("normalization service returned no choices")
	}

	record, err := parseRecordJSON(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	record.SourceURL = doc.SourceURL
	record.EnsureCollections()
	return record, nil
}

// parseRecordJSON tolerates markdown fences around the JSON body but
// nothing else.
func parseRecordJSON(content string) (*types.RecruitmentRecord, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	record := types.NewRecruitmentRecord()
	if err := json.Unmarshal([]byte(content), record); err != nil {
		return nil, fmt.Errorf("parse normalized record: %w", err)
	}
	if record.Title == "" {
		return nil, fmt.Errorf("normalized record has no title")
	}
	return record, nil
}

// buildUserPrompt serializes the document sections the service needs,
// bounded so oversized pages cannot blow the request.
func buildUserPrompt(doc *harvest.RawDocument, hints extract.LinkHints) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Source URL: %s\nPage title: %s\n", doc.SourceURL, doc.Title)

	for _, tag := range []string{"h1", "h2", "h3"} {
		for _, h := range doc.Headings[tag] {
			fmt.Fprintf(&sb, "Heading %s: %s\n", tag, h.Text)
		}
	}

	for i, table := range doc.Tables {
		fmt.Fprintf(&sb, "Table %d:\n", i+1)
		for _, row := range table.Rows {
			fmt.Fprintf(&sb, "  %s\n", row.Text())
		}
	}

	for _, list := range doc.Lists {
		for _, item := range list.Items {
			fmt.Fprintf(&sb, "- %s\n", item.Text)
		}
	}

	if hint := hints.Apply; hint != "" {
		fmt.Fprintf(&sb, "Apply link: %s\n", hint)
	}
	if hint := hints.Notification; hint != "" {
		fmt.Fprintf(&sb, "Notification link: %s\n", hint)
	}

	const maxPrompt = 16000
	prompt := sb.String()
	if len(prompt) > maxPrompt {
		prompt = prompt[:maxPrompt]
	}
	return prompt
}
