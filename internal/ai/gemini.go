package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"xpeak/internal/engine"
)

const DefaultModel = "gemini-2.5-flash"

// generator is the slice of the genai Models service the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements engine.Assistant on top of Gemini. Requests are throttled
// by a token bucket shared by all callers.
type Client struct {
	models  generator
	model   string
	limiter *rate.Limiter
	log     *zap.Logger
}

type Config struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
}

var _ engine.Assistant = (*Client)(nil)

// New creates a Gemini-backed assistant.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(gc.Models, cfg, log), nil
}

func newClient(models generator, cfg Config, log *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	every := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &Client{
		models:  models,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Every(every), 1),
		log:     log,
	}
}

// Breakdown asks the model to split a quest into categories of tasks.
func (c *Client) Breakdown(ctx context.Context, questTitle string) ([]engine.BreakdownCategory, error) {
	text, err := c.generate(ctx, breakdownPrompt(questTitle))
	if err != nil {
		return nil, err
	}
	return ParseBreakdown(text)
}

// SuggestTasks asks the model for standalone tasks matching prompt.
func (c *Client) SuggestTasks(ctx context.Context, prompt string) ([]engine.SuggestedTask, error) {
	text, err := c.generate(ctx, suggestPrompt(prompt))
	if err != nil {
		return nil, err
	}
	return ParseSuggestions(text)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	c.log.Debug("gemini response",
		zap.String("model", c.model),
		zap.Duration("took", time.Since(start)),
		zap.Int("bytes", len(text)),
	)
	return text, nil
}
