// Package synchttp implements the one-shot request/response vendor protocol:
// both images go out in a single JSON POST and the response body is the raw
// result.
package synchttp

import (
	"context"
	"net/http"
	"time"

	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

const defaultTimeout = 30 * time.Second

func init() {
	providers.Register(config.ProviderTypeSync, NewProvider)
}

type Provider struct {
	name   string
	config config.ProviderConfig
	client *http.Client
	logger *utils.Logger
}

func NewProvider(name string, cfg config.ProviderConfig, logger *utils.Logger) (providers.Provider, error) {
	if cfg.BaseURL == "" {
		return nil, platerrors.New(platerrors.KindConfig, "synchttp.NewProvider", "provider url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Provider{
		name:   name,
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) RequiresDocType() bool { return p.config.DocTypeRequired }

func (p *Provider) Execute(ctx context.Context, req providers.Request) (*providers.RawResult, error) {
	const op = "synchttp.Execute"

	body := map[string]interface{}{
		"image1": providers.Base64(req.IDImage),
		"image2": providers.Base64(req.SelfieImage),
	}
	if req.DocType != "" {
		body["doc_type"] = req.DocType
	}

	status, respBody, err := providers.PostJSON(ctx, p.client, p.config.BaseURL, p.config.APIKey, body)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindTransport, op, "provider call failed", err)
	}

	if status < 200 || status >= 300 {
		p.logger.WarnTag("Provider", "%s returned %d: %s", p.name, status, utils.Truncate(string(respBody), 256))
		return nil, platerrors.NewUpstream(op, "provider returned an error", status, string(respBody))
	}

	payload, err := providers.DecodePayload(respBody)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindParse, op, "provider returned unexpected body", err)
	}

	p.logger.InfoTag("Provider", "%s responded: status=%d bytes=%d", p.name, status, len(respBody))

	return &providers.RawResult{
		Payload:    payload,
		Text:       string(respBody),
		HTTPStatus: status,
		Mode:       p.name,
	}, nil
}
