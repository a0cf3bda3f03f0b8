// Package brain talks to the knowledge-base service that backs the chat
// agent. Outbound customer messages are mirrored here so the agent sees
// its own side of the conversation.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// logging path, keep it short so a slow Brain never holds a request
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// LogEntry is one mirrored message or workflow event.
type LogEntry struct {
	Source     string   `json:"source"`
	LineUserID string   `json:"line_user_id,omitempty"`
	ContractID int64    `json:"contract_id,omitempty"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
}

// Log mirrors an entry into the knowledge log.
func (c *Client) Log(ctx context.Context, entry LogEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logs", bytes.NewBuffer(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brain log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brain log failed with status code %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
