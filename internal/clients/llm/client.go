// Package llm provides the client for the language-model completion API
// used to summarize the week's audit comments into report prose.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldscope/portal/config"
)

// DefaultTimeout is the timeout applied to completion calls. Completions
// are slow compared to the other external calls.
const DefaultTimeout = 2 * time.Minute

const summaryPrompt = "You are writing the executive summary of a weekly field-audit report. " +
	"Summarize the auditors' final comments below in two short paragraphs, " +
	"highlighting recurring issues and anything requiring action. " +
	"Answer in the language of the comments."

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat-completions API
type Client struct {
	http  *resty.Client
	model string
}

// NewClient creates a completion client from the given configuration
func NewClient(cfg config.LLM) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(DefaultTimeout).
			SetAuthToken(cfg.APIKey).
			SetHeader("Content-Type", "application/json"),
		model: cfg.Model,
	}
}

// SummarizeComments produces report prose from the week's final comments
func (c *Client) SummarizeComments(ctx context.Context, comments []string) (string, error) {
	if len(comments) == 0 {
		return "", nil
	}

	var result completionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: summaryPrompt},
				{Role: "user", Content: strings.Join(comments, "\n")},
			},
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("completion request returned %s: %s", resp.Status(), resp.String())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion request returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
