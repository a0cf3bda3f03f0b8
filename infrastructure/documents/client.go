// Package documents calls the PDF-rendering microservice: structured
// payload in, time-limited signed URL to the rendered document out.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
)

// Template names understood by the render service.
const (
	TemplateContract    = "contract"
	TemplateQuote       = "quote"
	TemplateLegalLetter = "legal_letter"
	TemplateFloorPlan   = "floor_plan"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RenderResult is the signed, expiring download link for the rendered PDF.
type RenderResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type renderRequest struct {
	Template string `json:"template"`
	Payload  any    `json:"payload"`
}

// Render submits a payload for the named template and waits for the link.
func (c *Client) Render(ctx context.Context, template string, payload any) (*RenderResult, error) {
	raw, err := json.Marshal(renderRequest{Template: template, Payload: payload})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewBuffer(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", template, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render %s failed with status code %d: %s", template, resp.StatusCode, string(body))
	}

	var result RenderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ContractPayload is the field set the contract template expects.
type ContractPayload struct {
	ContractNumber string `json:"contract_number"`
	CustomerName   string `json:"customer_name"`
	BranchName     string `json:"branch_name"`
	RoomCode       string `json:"room_code"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	MonthlyRent    string `json:"monthly_rent"`
	Deposit        string `json:"deposit"`
	// Spelled-out rent for the legal wording block.
	MonthlyRentWords string `json:"monthly_rent_words"`
}

// NewContractPayload fills the derived fields of a contract payload.
func NewContractPayload(p ContractPayload, monthlyRent decimal.Decimal) ContractPayload {
	p.MonthlyRent = monthlyRent.String()
	p.MonthlyRentWords = num2words.Convert(int(monthlyRent.IntPart()))
	return p
}
