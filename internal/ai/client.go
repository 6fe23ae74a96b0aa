package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/model"
)

const (
	defaultBaseURL = "https://api.x.ai/v1/chat/completions"
	defaultModel   = "grok-3-latest"

	analysisMaxTokens = 500
	draftMaxTokens    = 300

	maxAttempts = 3

	// FallbackDraft is substituted when drafting fails, so the pipeline
	// always has something presentable for operator review.
	FallbackDraft = "Thank you for your email. I will get back to you soon."
)

// Client talks to a chat-completions style inference service. Analyze
// and Draft never return errors: every failure degrades to a sentinel
// value, and every outcome is recorded in the audit log keyed by the
// message subject.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger

	// backoffBase is the first retry delay; each subsequent delay doubles.
	backoffBase time.Duration
}

// New creates a client for the remote analysis/drafting service.
// Empty baseURL and modelName fall back to the xAI defaults.
func New(apiKey, baseURL, modelName string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if modelName == "" {
		modelName = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       modelName,
		client:      &http.Client{},
		logger:      logger,
		backoffBase: time.Second,
	}
}

// Analyze classifies the urgency of a message and produces a short
// ticket-style summary. The result is always fully populated: a failed
// call or an undecodable payload yields Unknown urgency with explanatory
// text, never an error.
func (c *Client) Analyze(ctx context.Context, subject, body string) model.Analysis {
	prompt := fmt.Sprintf(
		"Analyze the following email content and perform two tasks:\n"+
			"1. Determine the urgency level (Low, Medium, High) based on keywords, tone, and context. "+
			"Explain your reasoning briefly.\n"+
			"2. Summarize the email in 1-2 sentences in a ticket-like format, capturing the main point.\n\n"+
			"Subject: %s\nBody: %s\n\n"+
			"Return the response in JSON format with fields: 'urgency', 'reasoning', and 'summary'.",
		subject, body,
	)

	content, err := c.complete(ctx, completion{
		system:    "You are an email analysis assistant.",
		prompt:    prompt,
		maxTokens: analysisMaxTokens,
	})
	if err != nil {
		c.logger.Error("analysis call failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return model.Analysis{
			Urgency:   model.UrgencyUnknown,
			Reasoning: fmt.Sprintf("API error: %v", err),
			Summary:   "Unable to summarize due to API failure",
		}
	}

	var payload struct {
		Urgency   string `json:"urgency"`
		Reasoning string `json:"reasoning"`
		Summary   string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		c.logger.Error("analysis response was not parseable",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return model.Analysis{
			Urgency:   model.UrgencyUnknown,
			Reasoning: "Failed to parse API response",
			Summary:   "Unable to summarize due to invalid response format",
		}
	}

	c.logger.Info("analyzed email", zap.String("subject", subject))

	analysis := model.Analysis{
		Urgency:   model.ParseUrgency(payload.Urgency),
		Reasoning: payload.Reasoning,
		Summary:   payload.Summary,
	}
	if analysis.Reasoning == "" {
		analysis.Reasoning = "No reasoning provided"
	}
	if analysis.Summary == "" {
		analysis.Summary = "No summary available"
	}

	return analysis
}

// Draft generates a reply to the message. On any failure after retries
// are exhausted it returns FallbackDraft; the returned text is never
// empty.
func (c *Client) Draft(ctx context.Context, subject, body string) string {
	prompt := fmt.Sprintf(
		"Generate a polite, context-aware email response for the following email. "+
			"The response should address the main points, match the tone, and be concise. "+
			"Do not include sensitive information or commit to actions without confirmation.\n\n"+
			"Subject: %s\nBody: %s\n\n"+
			"Return the response as plain text.",
		subject, body,
	)

	content, err := c.complete(ctx, completion{
		system:    "You are an email response assistant.",
		prompt:    prompt,
		maxTokens: draftMaxTokens,
	})
	if err != nil {
		c.logger.Error("draft call failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return FallbackDraft
	}

	text := strings.TrimSpace(content)
	if text == "" {
		c.logger.Warn("draft response was empty", zap.String("subject", subject))
		return FallbackDraft
	}

	c.logger.Info("drafted response", zap.String("subject", subject))
	return text
}

// completion describes one structured remote call. Analyze and Draft
// differ only in prompt, token budget, and how they decode the content,
// so the transport and retry discipline live in a single place.
type completion struct {
	system    string
	prompt    string
	maxTokens int
}

// complete performs the chat-completions request and returns the message
// content of the first choice. Server-side transient failures (502, 503,
// 504) are retried up to maxAttempts with exponential backoff; every
// other failure surfaces once.
func (c *Client) complete(ctx context.Context, req completion) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.system},
			{Role: "user", Content: req.prompt},
		},
		Stream:      false,
		Temperature: 0,
		MaxTokens:   req.maxTokens,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		content, retryable, err := c.doRequest(ctx, bodyBytes)
		if err == nil {
			return content, nil
		}
		if !retryable || attempt >= maxAttempts {
			return "", err
		}

		delay := c.backoffBase << (attempt - 1)
		c.logger.Warn("transient service error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
}

// doRequest performs a single HTTP round trip. The second return value
// reports whether the failure is a transient server-side status worth
// retrying.
func (c *Client) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL, bytes.NewReader(body),
	)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("calling service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", true, fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", false, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", false, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", false, fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", false, fmt.Errorf("response contained no choices")
	}

	return result.Choices[0].Message.Content, false, nil
}

// --- chat-completions API types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
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

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
