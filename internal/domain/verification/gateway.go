package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"facegate-server-go/internal/domain/eventbus"
	"facegate-server-go/internal/domain/image"
	"facegate-server-go/internal/platform/config"
	platerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	"facegate-server-go/internal/utils"
)

// Gateway drives one verification request through validation, compression,
// the configured provider adapter, and normalization. The adapter is chosen
// once at construction time; requests never re-route between vendors.
type Gateway struct {
	provider   providers.Provider
	validator  *image.SecurityValidator
	compressor *image.Compressor
	normalizer *Normalizer
	targetKB   int
	logger     *utils.Logger
	bus        *eventbus.AsyncEventBus
}

// GatewayOptions collects the gateway's collaborators.
type GatewayOptions struct {
	Provider       providers.Provider
	ProviderConfig config.ProviderConfig
	Security       *config.SecurityConfig
	Compression    config.CompressionConfig
	Logger         *utils.Logger
	Bus            *eventbus.AsyncEventBus
}

func NewGateway(opts GatewayOptions) *Gateway {
	return &Gateway{
		provider:   opts.Provider,
		validator:  image.NewSecurityValidator(opts.Security, opts.Logger),
		compressor: image.NewCompressor(opts.Logger),
		normalizer: NewNormalizer(opts.ProviderConfig, opts.Logger),
		targetKB:   opts.Compression.TargetSizeKB,
		logger:     opts.Logger,
		bus:        opts.Bus,
	}
}

// ProviderName reports the active vendor integration.
func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

// Verify runs the full request lifecycle. Validation failures surface as
// validation errors; everything after compression carries the provider's own
// failure shape through to the caller.
func (g *Gateway) Verify(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.NewString()
	start := time.Now()

	g.publishStage(requestID, eventbus.EventVerificationReceived, "received", start, nil)

	if err := g.validate(req); err != nil {
		g.publishStage(requestID, eventbus.EventVerificationErrored, "validated", start, err)
		return nil, err
	}
	g.publishStage(requestID, eventbus.EventVerificationValidated, "validated", start, nil)

	idImage, selfieImage, err := g.compressPair(ctx, requestID, req)
	if err != nil {
		g.publishStage(requestID, eventbus.EventVerificationErrored, "compressed", start, err)
		return nil, err
	}
	g.publishStage(requestID, eventbus.EventVerificationCompressed, "compressed", start, nil)

	raw, err := g.provider.Execute(ctx, providers.Request{
		IDImage:     idImage,
		SelfieImage: selfieImage,
		DocType:     req.DocType,
	})
	if err != nil {
		g.logger.ErrorTag("Gateway", "%s provider call failed: %v", requestID, err)
		g.publishStage(requestID, eventbus.EventVerificationErrored, "provider_invoked", start, err)
		return nil, err
	}
	g.publishStage(requestID, eventbus.EventVerificationInvoked, "provider_invoked", start, nil)

	result := g.normalizer.Normalize(raw, requestID)
	g.publishStage(requestID, eventbus.EventVerificationNormalized, "normalized", start, nil)

	return result, nil
}

func (g *Gateway) validate(req Request) error {
	const op = "gateway.validate"

	if len(req.IDImage) == 0 || len(req.SelfieImage) == 0 {
		return platerrors.New(platerrors.KindValidation, op,
			"Both idImage and selfieImage are required")
	}

	if g.provider.RequiresDocType() && req.DocType == "" {
		return platerrors.New(platerrors.KindValidation, op,
			"docType is required for the configured provider")
	}

	for label, raw := range map[string][]byte{"idImage": req.IDImage, "selfieImage": req.SelfieImage} {
		if v := g.validator.ValidateBytes(raw, ""); !v.IsValid {
			g.logger.WarnTag("Gateway", "rejected %s: %v", label, v.Error)
			return platerrors.New(platerrors.KindValidation, op,
				label+" is not a valid image: "+v.Error.Error())
		}
	}
	return nil
}

// compressPair shrinks both images before any provider call. The two images
// are independent, so they compress concurrently; a decode failure at this
// point is bad caller input, not a provider fault.
func (g *Gateway) compressPair(ctx context.Context, requestID string, req Request) (*image.Compressed, *image.Compressed, error) {
	const op = "gateway.compress"

	var idImage, selfieImage *image.Compressed
	group, _ := errgroup.WithContext(ctx)

	group.Go(func() error {
		out, err := g.compressor.Compress(req.IDImage, g.targetKB)
		if err != nil {
			return platerrors.Wrap(platerrors.KindValidation, op, "idImage could not be processed", err)
		}
		idImage = out
		g.publishCompression(requestID, "id", out)
		return nil
	})
	group.Go(func() error {
		out, err := g.compressor.Compress(req.SelfieImage, g.targetKB)
		if err != nil {
			return platerrors.Wrap(platerrors.KindValidation, op, "selfieImage could not be processed", err)
		}
		selfieImage = out
		g.publishCompression(requestID, "selfie", out)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return idImage, selfieImage, nil
}

func (g *Gateway) publishStage(requestID, topic, stage string, start time.Time, err error) {
	if g.bus == nil {
		return
	}
	data := eventbus.VerificationEventData{
		RequestID:    requestID,
		ProviderMode: g.provider.Name(),
		Stage:        stage,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		data.Error = err.Error()
	}
	g.bus.PublishAsync(topic, data)
}

func (g *Gateway) publishCompression(requestID, label string, out *image.Compressed) {
	if g.bus == nil {
		return
	}
	g.bus.PublishAsync(eventbus.EventCompressionDetail, eventbus.CompressionEventData{
		RequestID:    requestID,
		Label:        label,
		OriginalSize: out.OriginalSize,
		EncodedSize:  out.EncodedSize,
		QualityUsed:  out.QualityUsed,
	})
}
