package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

type ClientConfig struct {
	Model   string
	Timeout int
}

// Client binds a provider to a model and applies the per-call timeout.
type Client struct {
	provider IProvider
	cfg      ClientConfig
}

func NewClient(provider IProvider, cfg ClientConfig) *Client {
	return &Client{provider: provider, cfg: cfg}
}

// Complete returns the provider's reply text unchanged. An empty reply is an upstream error.
func (c *Client) Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	if c == nil || c.provider == nil {
		return "", ErrUnavailable
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := c.provider.Chat(ctx, &ChatRequest{
		Model:     c.cfg.Model,
		System:    system,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		var aerr *Error
		if !errors.As(err, &aerr) {
			err = &Error{Provider: c.provider.Name(), Kind: KindOf(err), Err: err}
		}
		return "", err
	}
	if strings.TrimSpace(resp) == "" {
		return "", upstreamError(c.provider.Name(), errors.New("empty ai response"))
	}
	return resp, nil
}

func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return ""
	}
	return c.provider.Name()
}
