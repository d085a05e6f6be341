package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/httpclient"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultAPIBase is the OpenAI-compatible endpoint used when no
	// llm.api_base is configured.
	DefaultAPIBase = "https://integrate.api.nvidia.com/v1"
	// DefaultModel is the model requested when no llm.model is configured.
	DefaultModel = "meta/llama-3.2-3b-instruct"
	// DefaultPromptCharLimit bounds how many characters of batch text are
	// embedded into a single prompt.
	DefaultPromptCharLimit = 8000

	defaultTemperature     = 0.2
	defaultTopP            = 0.7
	defaultMaxTokens       = 4096
	defaultMinCallInterval = 2 * time.Second
	defaultMaxRetries      = 2
	defaultRetryBackoff    = 60 * time.Second
	defaultRequestTimeout  = 90 * time.Second

	errPreviewLimit = 500
)

// Client talks to an OpenAI-compatible chat completions API and turns batch
// text into raw model output. It owns the pacing and quota-retry behavior
// for all calls it makes.
type Client struct {
	httpClient *resty.Client
	logger     hclog.Logger
	limiter    *RateLimiter

	apiBase         string
	apiKey          string
	model           string
	temperature     float64
	topP            float64
	maxTokens       int
	promptCharLimit int
	maxRetries      int
	retryBackoff    time.Duration

	sleep func(time.Duration)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New creates a model API client from the global configuration. A missing
// API key is a configuration error, everything else falls back to defaults.
func New(cfg *config.Config, logger hclog.Logger) (*Client, error) {
	llmConfig := cfg.LLM
	if llmConfig.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient := httpclient.InitializeRestyClient(logger, cfg)
	if cfg.HTTPClient.Timeout.Std() == 0 {
		// completions for a full batch routinely outlive the general
		// HTTP default
		httpClient.SetTimeout(defaultRequestTimeout)
	}

	return &Client{
		httpClient:      httpClient,
		logger:          logger,
		limiter:         NewRateLimiter(config.SetThen(llmConfig.MinCallInterval.Std(), defaultMinCallInterval)),
		apiBase:         strings.TrimRight(config.SetThen(llmConfig.APIBase, DefaultAPIBase), "/"),
		apiKey:          llmConfig.APIKey,
		model:           config.SetThen(llmConfig.Model, DefaultModel),
		temperature:     config.SetThen(llmConfig.Temperature, defaultTemperature),
		topP:            config.SetThen(llmConfig.TopP, defaultTopP),
		maxTokens:       config.SetThen(llmConfig.MaxTokens, defaultMaxTokens),
		promptCharLimit: config.SetThen(llmConfig.PromptCharLimit, DefaultPromptCharLimit),
		maxRetries:      config.SetThen(llmConfig.MaxRetries, defaultMaxRetries),
		retryBackoff:    config.SetThen(llmConfig.RetryBackoff.Std(), defaultRetryBackoff),
		sleep:           time.Sleep,
	}, nil
}

// Model returns the model name the client requests completions from.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends one batch payload to the model and returns the raw message
// content. Quota failures are retried up to the configured bound with a
// backoff before each retry, any other failure is returned immediately.
func (c *Client) Analyze(ctx context.Context, batchText string) (string, error) {
	prompt := c.buildPrompt(batchText)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("model API quota hit, backing off before retry",
				"wait", c.retryBackoff, "attempt", attempt, "maxRetries", c.maxRetries)
			c.sleep(c.retryBackoff)
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		content, err := c.complete(ctx, prompt)
		if err == nil {
			return content, nil
		}
		if !IsQuotaError(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("model API retries exhausted: %w", lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	c.limiter.Acquire()
	c.logger.Debug("sending completion request", "model", c.model, "promptChars", len(prompt))

	request := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	}

	var response chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&response).
		Post(c.apiBase + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("model API request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", &QuotaError{StatusCode: resp.StatusCode(), Message: preview(resp.String(), errPreviewLimit)}
	}
	if resp.StatusCode() != http.StatusOK {
		body := preview(resp.String(), errPreviewLimit)
		if isQuotaMessage(body) {
			return "", &QuotaError{StatusCode: resp.StatusCode(), Message: body}
		}
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode(), body)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrEmptyResponse)
	}
	content := response.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: blank message content", ErrEmptyResponse)
	}
	return content, nil
}

func preview(text string, limit int) string {
	return truncate(strings.TrimSpace(text), limit)
}
