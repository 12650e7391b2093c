package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
)

const systemPrompt = `You extract tire specifications from product descriptions.
Reply with a single JSON object and nothing else:
{"width":int|null,"aspect_ratio":int|null,"rim_diameter":int|null,"construction":string|null,"load_index":int|null,"speed_rating":string|null,"confidence":int}
confidence is 0-100: how sure you are the extracted fields are correct.`

type Config struct {
	APIKey      string
	BaseURL     string
	CallTimeout time.Duration
	MaxRetries  int
}

type openAIProvider struct {
	client      openai.Client
	callTimeout time.Duration
	maxRetries  int
}

// NewOpenAIProvider builds the production fallback client. Each call carries
// its own timeout so one slow call cannot stall a whole job, and transient
// failures are retried with exponential backoff.
func NewOpenAIProvider(config Config) Provider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	timeout := config.CallTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &openAIProvider{
		client:      openai.NewClient(opts...),
		callTimeout: timeout,
		maxRetries:  config.MaxRetries,
	}
}

func (p *openAIProvider) CostPerCall(model string) float64 {
	return lookupCost(model)
}

func (p *openAIProvider) Classify(ctx context.Context, description, model string) (tirespec.Specification, error) {
	var content string

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		defer cancel()

		response, err := p.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(tirespec.Normalize(description)),
			},
			Temperature: openai.Float(0),
			MaxTokens:   openai.Int(256),
		})
		if err != nil {
			return err
		}
		if len(response.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("no choices in response"))
		}
		content = response.Choices[0].Message.Content
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return tirespec.Specification{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	spec, err := parseResponse(content)
	if err != nil {
		return tirespec.Specification{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	spec.Method = tirespec.MethodAI
	spec.AIModel = model
	return spec, nil
}

type classifierResponse struct {
	Width        *int    `json:"width"`
	AspectRatio  *int    `json:"aspect_ratio"`
	RimDiameter  *int    `json:"rim_diameter"`
	Construction *string `json:"construction"`
	LoadIndex    *int    `json:"load_index"`
	SpeedRating  *string `json:"speed_rating"`
	Confidence   int     `json:"confidence"`
}

func parseResponse(content string) (tirespec.Specification, error) {
	// Some models wrap JSON in a code fence despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed classifierResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return tirespec.Specification{}, fmt.Errorf("unparseable classifier response: %w", err)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return tirespec.Specification{
		Width:        parsed.Width,
		AspectRatio:  parsed.AspectRatio,
		RimDiameter:  parsed.RimDiameter,
		Construction: parsed.Construction,
		LoadIndex:    parsed.LoadIndex,
		SpeedRating:  parsed.SpeedRating,
		Confidence:   confidence,
	}, nil
}
