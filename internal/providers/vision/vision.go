// Package vision implements the generative-vision vendor protocol: both
// images plus a comparison instruction go to a chat-style model endpoint, and
// the free-text reply is parsed into a match verdict.
package vision

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

const comparisonPrompt = "Compare the face in the first image (an identity document photo) " +
	"with the face in the second image (a selfie). State clearly whether they match " +
	"and give a confidence percentage, for example: Match: Yes, Confidence: 92%."

const defaultTimeout = 60 * time.Second

func init() {
	providers.Register(config.ProviderTypeVision, NewProvider)
}

type Provider struct {
	name   string
	config config.ProviderConfig
	client *openai.Client
	logger *utils.Logger
}

func NewProvider(name string, cfg config.ProviderConfig, logger *utils.Logger) (providers.Provider, error) {
	const op = "vision.NewProvider"

	if cfg.APIKey == "" {
		return nil, platerrors.New(platerrors.KindConfig, op, "vision provider requires an api key")
	}
	if cfg.ModelName == "" {
		return nil, platerrors.New(platerrors.KindConfig, op, "vision provider requires model_name")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		name:   name,
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) RequiresDocType() bool { return p.config.DocTypeRequired }

func (p *Provider) Execute(ctx context.Context, req providers.Request) (*providers.RawResult, error) {
	const op = "vision.Execute"

	timeout := p.config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: comparisonPrompt,
			},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: providers.DataURI(req.IDImage)},
			},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: providers.DataURI(req.SelfieImage)},
			},
		},
	}

	request := openai.ChatCompletionRequest{
		Model:       p.config.ModelName,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: float32(p.config.Temperature),
	}
	if p.config.MaxTokens > 0 {
		request.MaxTokens = p.config.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		var apiErr *openai.APIError
		if goerrors.As(err, &apiErr) {
			return nil, platerrors.NewUpstream(op, "vision model call failed",
				apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, platerrors.Wrap(platerrors.KindTransport, op, "vision model call failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, platerrors.New(platerrors.KindParse, op, "vision model returned no choices")
	}

	text := utils.RemoveControlCharacters(utils.RemoveAngleBracketContent(resp.Choices[0].Message.Content))
	matched, score := ParseVerdict(text)

	p.logger.InfoTag("Provider", "%s model %s verdict: matched=%v score=%.0f",
		p.name, p.config.ModelName, matched, score)

	return &providers.RawResult{
		Payload: map[string]interface{}{
			"matched": matched,
			"score":   score,
			"text":    text,
		},
		Text: text,
		Mode: p.name,
	}, nil
}
