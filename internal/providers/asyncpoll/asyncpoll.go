// Package asyncpoll implements the create-then-poll vendor protocol: the
// initial POST returns a task id and the adapter polls a status endpoint
// until the task reaches a terminal state or the poll budget runs out.
package asyncpoll

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
	defaultPollAttempts = 30
)

func init() {
	providers.Register(config.ProviderTypeAsyncPoll, NewProvider)
}

type Provider struct {
	name         string
	config       config.ProviderConfig
	client       *http.Client
	logger       *utils.Logger
	pollInterval time.Duration
	maxAttempts  int
}

func NewProvider(name string, cfg config.ProviderConfig, logger *utils.Logger) (providers.Provider, error) {
	if cfg.BaseURL == "" {
		return nil, platerrors.New(platerrors.KindConfig, "asyncpoll.NewProvider", "provider url is required")
	}
	if cfg.PollURL == "" {
		return nil, platerrors.New(platerrors.KindConfig, "asyncpoll.NewProvider", "provider poll_url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := cfg.MaxPollAttempts
	if attempts <= 0 {
		attempts = defaultPollAttempts
	}

	return &Provider{
		name:         name,
		config:       cfg,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
		pollInterval: interval,
		maxAttempts:  attempts,
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) RequiresDocType() bool { return p.config.DocTypeRequired }

func (p *Provider) Execute(ctx context.Context, req providers.Request) (*providers.RawResult, error) {
	taskID, err := p.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	p.logger.InfoTag("Provider", "%s accepted task %s, polling every %s", p.name, taskID, p.pollInterval)

	return p.poll(ctx, taskID)
}

func (p *Provider) submit(ctx context.Context, req providers.Request) (string, error) {
	const op = "asyncpoll.submit"

	body := map[string]interface{}{
		"image1": providers.Base64(req.IDImage),
		"image2": providers.Base64(req.SelfieImage),
	}
	if req.DocType != "" {
		body["doc_type"] = req.DocType
	}

	status, respBody, err := providers.PostJSON(ctx, p.client, p.config.BaseURL, p.config.APIKey, body)
	if err != nil {
		return "", platerrors.Wrap(platerrors.KindTransport, op, "provider call failed", err)
	}
	if status < 200 || status >= 300 {
		return "", platerrors.NewUpstream(op, "provider rejected the task", status, string(respBody))
	}

	payload, err := providers.DecodePayload(respBody)
	if err != nil {
		return "", platerrors.Wrap(platerrors.KindParse, op, "provider returned unexpected body", err)
	}

	taskID := stringField(payload, "request_id", "task_id", "id")
	if taskID == "" {
		return "", platerrors.New(platerrors.KindParse, op, "provider response has no task id")
	}
	return taskID, nil
}

// poll drives the wait loop. Status transitions are one-directional, so the
// first terminal status decides the outcome.
func (p *Provider) poll(ctx context.Context, taskID string) (*providers.RawResult, error) {
	const op = "asyncpoll.poll"

	pollURL := fmt.Sprintf("%s?request_id=%s", p.config.PollURL, url.QueryEscape(taskID))

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, respBody, err := providers.GetJSON(ctx, p.client, pollURL, p.config.APIKey)
		if err != nil {
			return nil, platerrors.Wrap(platerrors.KindTransport, op, "poll request failed", err)
		}

		// A 404 on the very first poll means the polling endpoint itself is
		// wrong; retrying cannot fix a misconfigured integration.
		if status == http.StatusNotFound && attempt == 1 {
			return nil, platerrors.New(platerrors.KindConfig, op,
				fmt.Sprintf("polling endpoint not found: %s", p.config.PollURL))
		}
		if status < 200 || status >= 300 {
			return nil, platerrors.NewUpstream(op, "poll returned an error", status, string(respBody))
		}

		payload, err := providers.DecodePayload(respBody)
		if err != nil {
			return nil, platerrors.Wrap(platerrors.KindParse, op, "poll returned unexpected body", err)
		}

		taskStatus := strings.ToLower(stringField(payload, "status"))
		switch taskStatus {
		case providers.TaskCompleted, "success":
			p.logger.InfoTag("Provider", "%s task %s completed after %d polls", p.name, taskID, attempt)
			return &providers.RawResult{
				Payload:    payload,
				Text:       string(respBody),
				HTTPStatus: status,
				Mode:       p.name,
			}, nil
		case providers.TaskFailed, "failure":
			return nil, platerrors.NewUpstream(op, "provider task failed",
				http.StatusInternalServerError, string(respBody))
		case providers.TaskPending, providers.TaskInProgress, "":
			// keep waiting
		default:
			p.logger.WarnTag("Provider", "%s task %s reported unknown status %q", p.name, taskID, taskStatus)
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, platerrors.Wrap(platerrors.KindTimeout, op, "poll cancelled", ctx.Err())
		case <-ticker.C:
		}
	}

	return nil, platerrors.New(platerrors.KindTimeout, op,
		fmt.Sprintf("task %s still pending after %d polls", taskID, p.maxAttempts))
}

func stringField(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key]; ok {
			switch t := v.(type) {
			case string:
				if t != "" {
					return t
				}
			case float64:
				return fmt.Sprintf("%.0f", t)
			}
		}
	}
	return ""
}
