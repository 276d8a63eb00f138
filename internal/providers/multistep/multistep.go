// Package multistep implements the stateful subject-flow vendor protocol:
// create a subject, attach the selfie, then submit the document. Matching is
// a side effect of the document submission, whose response body is the raw
// result. The first failed step aborts the sequence; abandoned subjects are
// the vendor's garbage to collect.
package multistep

import (
	"context"
	"net/http"
	"time"

	"facegate-server-go/internal/domain/image"
	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

const defaultTimeout = 60 * time.Second

func init() {
	providers.Register(config.ProviderTypeMultiStep, NewProvider)
}

type Provider struct {
	name   string
	config config.ProviderConfig
	client *http.Client
	logger *utils.Logger
}

func NewProvider(name string, cfg config.ProviderConfig, logger *utils.Logger) (providers.Provider, error) {
	if cfg.BaseURL == "" {
		return nil, platerrors.New(platerrors.KindConfig, "multistep.NewProvider", "provider url is required")
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
	subjectID, err := p.createSubject(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.InfoTag("Provider", "%s created subject %s", p.name, subjectID)

	if err := p.attachSelfie(ctx, subjectID, req.SelfieImage); err != nil {
		return nil, err
	}

	return p.submitDocument(ctx, subjectID, req)
}

func (p *Provider) createSubject(ctx context.Context) (string, error) {
	const op = "multistep.createSubject"

	url := providers.JoinURL(p.config.BaseURL, "subjects")
	status, body, err := providers.PostJSON(ctx, p.client, url, p.config.APIKey, map[string]interface{}{})
	if err != nil {
		return "", platerrors.Wrap(platerrors.KindTransport, op, "create subject failed", err)
	}
	if status < 200 || status >= 300 {
		return "", platerrors.NewUpstream(op, "create subject failed", status, string(body))
	}

	payload, err := providers.DecodePayload(body)
	if err != nil {
		return "", platerrors.Wrap(platerrors.KindParse, op, "subject response has unexpected body", err)
	}

	subjectID := firstString(payload, "subject_id", "id", "token")
	if subjectID == "" {
		return "", platerrors.New(platerrors.KindParse, op, "subject response has no subject id")
	}
	return subjectID, nil
}

func (p *Provider) attachSelfie(ctx context.Context, subjectID string, selfie *image.Compressed) error {
	const op = "multistep.attachSelfie"

	url := providers.JoinURL(p.config.BaseURL, "subjects", subjectID, "selfie")
	body := map[string]interface{}{
		"image": providers.Base64(selfie),
	}

	status, respBody, err := providers.PostJSON(ctx, p.client, url, p.config.APIKey, body)
	if err != nil {
		return platerrors.Wrap(platerrors.KindTransport, op, "attach selfie failed", err)
	}
	if status < 200 || status >= 300 {
		return platerrors.NewUpstream(op, "attach selfie failed", status, string(respBody))
	}

	p.logger.DebugTag("Provider", "%s attached selfie to subject %s", p.name, subjectID)
	return nil
}

func (p *Provider) submitDocument(ctx context.Context, subjectID string, req providers.Request) (*providers.RawResult, error) {
	const op = "multistep.submitDocument"

	url := providers.JoinURL(p.config.BaseURL, "subjects", subjectID, "documents")
	body := map[string]interface{}{
		"image": providers.Base64(req.IDImage),
	}
	if req.DocType != "" {
		body["doc_type"] = req.DocType
	}

	status, respBody, err := providers.PostJSON(ctx, p.client, url, p.config.APIKey, body)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindTransport, op, "submit document failed", err)
	}
	if status < 200 || status >= 300 {
		return nil, platerrors.NewUpstream(op, "submit document failed", status, string(respBody))
	}

	payload, err := providers.DecodePayload(respBody)
	if err != nil {
		return nil, platerrors.Wrap(platerrors.KindParse, op, "document response has unexpected body", err)
	}

	p.logger.InfoTag("Provider", "%s completed match for subject %s", p.name, subjectID)

	return &providers.RawResult{
		Payload:    payload,
		Text:       string(respBody),
		HTTPStatus: status,
		Mode:       p.name,
	}, nil
}

func firstString(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
