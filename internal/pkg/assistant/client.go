package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

var ErrEmptyReply = errors.New("assistant returned no content")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	AgentID  string    `json:"agent_id,omitempty"`
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// Client talks to the agents endpoint when an agent id is configured and to
// chat completions otherwise.
type Client struct {
	client *resty.Client
	cfg    *Config
}

func NewClient(cfg *Config) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{client: c, cfg: cfg}
}

// Complete sends the conversation and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body := completionRequest{Messages: messages}
	path := "/v1/chat/completions"
	if c.cfg.AgentID != "" {
		body.AgentID = c.cfg.AgentID
		path = "/v1/agents/completions"
	} else {
		body.Model = c.cfg.Model
	}

	var out completionResponse
	var e apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&e).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	if res.IsError() {
		msg := e.Message
		if msg == "" && e.Detail != nil {
			msg = fmt.Sprint(e.Detail)
		}
		return "", fmt.Errorf("assistant status %d: %s", res.StatusCode(), msg)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
