package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalit-mendapara/fittrack/config"
	"github.com/lalit-mendapara/fittrack/logger"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Choices []Choice `json:"choices"`
}

type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		apiKey:  config.GetEnv("LLM_API_KEY", ""),
		baseURL: config.GetEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		model:   config.GetEnv("LLM_MODEL", "gpt-4o-mini"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("LLM_API_KEY not configured")
	}

	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1500,
		Temperature: 0.4,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// AdjustItem is one remaining meal slot sent for requantification.
type AdjustItem struct {
	MealID       string  `json:"meal_id"`
	Label        string  `json:"label"`
	PortionLabel string  `json:"portion_label"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	IsSnack      bool    `json:"is_snack"`
}

// MealAdjustment is the model's requantified version of one item.
type MealAdjustment struct {
	MealID       string  `json:"meal_id"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	PortionLabel string  `json:"portion_label"`
	Note         string  `json:"note"`
}

// AdjustMeals asks the model to requantify the remaining meals of the day so
// their total moves by magnitude kcal in the given direction ("reduce" or
// "increase"). The contract the model is held to:
//   - exactly one adjustment per input item, same meal_id
//   - protein moves by at most 5% of its original value
//   - snacks are resized before main meals
//   - dishes are requantified, never renamed
//   - each adjustment carries a short human-readable note
//
// Callers validate the contract and fall back to deterministic scaling when
// it is broken.
func (c *Client) AdjustMeals(ctx context.Context, items []AdjustItem, direction string, magnitude float64, phase string) ([]MealAdjustment, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to adjust")
	}

	requestID := uuid.NewString()

	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	prompt := fmt.Sprintf(`The user is in the %s phase of a calorie-banking plan. Their remaining meals today must %s by about %.0f kcal in total.

Remaining meals:
%s

Adjust portion sizes only. Rules:
1. Return exactly one adjustment per meal, with the same meal_id.
2. Never change protein by more than 5%% of its original value.
3. Prefer resizing snacks (is_snack=true) before main meals.
4. Do not rename any dish; only change the quantities in portion_label.
5. Add a one-sentence note per meal explaining the change.

Return ONLY a JSON array:
[{"meal_id": string, "calories": float, "protein": float, "carbs": float, "fat": float, "portion_label": string, "note": string}]`,
		phase, direction, magnitude, string(itemsJSON))

	logger.Info("Requesting meal adjustments", "request_id", requestID, "items", len(items), "direction", direction, "magnitude", magnitude, "phase", phase)

	resp, err := c.Chat(ctx, []Message{
		{Role: "system", Content: "You are a nutrition assistant. You requantify meal portions to hit a calorie budget. You respond with JSON only."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		logger.Warn("Meal adjustment call failed", "request_id", requestID, "error", err)
		return nil, err
	}

	// Clean output from possible markdown code blocks
	cleanResp := strings.TrimSpace(resp)
	cleanResp = strings.TrimPrefix(cleanResp, "```json")
	cleanResp = strings.TrimPrefix(cleanResp, "```")
	cleanResp = strings.TrimSuffix(cleanResp, "```")
	cleanResp = strings.TrimSpace(cleanResp)

	var adjustments []MealAdjustment
	if err := json.Unmarshal([]byte(cleanResp), &adjustments); err != nil {
		logger.Warn("Failed to parse adjustment response", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("failed to parse adjustment response: %w", err)
	}

	logger.Info("Meal adjustments received", "request_id", requestID, "adjustments", len(adjustments))
	return adjustments, nil
}
