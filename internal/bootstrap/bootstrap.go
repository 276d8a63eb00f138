// Package bootstrap wires the process together: configuration, logging, the
// event bus, the provider adapter, the gateway, and the HTTP server, with
// graceful shutdown on SIGINT/SIGTERM.
package bootstrap

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	"facegate-server-go/internal/domain/eventbus"
	"facegate-server-go/internal/domain/verification"
	platformconfig "facegate-server-go/internal/platform/config"
	platformerrors "facegate-server-go/internal/platform/errors"
	"facegate-server-go/internal/providers"
	httptransport "facegate-server-go/internal/transport/http"
	httpfacematch "facegate-server-go/internal/transport/http/facematch"
	httpwebapi "facegate-server-go/internal/transport/http/webapi"
	"facegate-server-go/internal/utils"

	_ "facegate-server-go/internal/providers/asyncpoll"
	_ "facegate-server-go/internal/providers/multistep"
	_ "facegate-server-go/internal/providers/synchttp"
	_ "facegate-server-go/internal/providers/vision"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>Facegate API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Title   string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	config       *platformconfig.Config
	configPath   string
	logger       *utils.Logger
	bus          *eventbus.AsyncEventBus
	provider     providers.Provider
	providerName string
	gateway      *verification.Gateway
}

// Run starts the full service lifecycle: configuration loading, dependency
// initialisation, the HTTP server, and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, initGraph(), state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	defer eventbus.Shutdown()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("Bootstrap", "service stopped cleanly")
	logger.Close()
	return nil
}

func initGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:      "logging:init",
			Title:   "Initialise logger",
			Kind:    platformerrors.KindBootstrap,
			Execute: initLoggerStep,
		},
		{
			ID:      "events:init",
			Title:   "Initialise event bus",
			Kind:    platformerrors.KindBootstrap,
			Execute: initEventBusStep,
		},
		{
			ID:      "provider:init",
			Title:   "Initialise provider adapter",
			Kind:    platformerrors.KindConfig,
			Execute: initProviderStep,
		},
		{
			ID:      "gateway:init",
			Title:   "Initialise verification gateway",
			Kind:    platformerrors.KindBootstrap,
			Execute: initGatewayStep,
		},
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	for _, step := range steps {
		if err := step.Execute(ctx, state); err != nil {
			return platformerrors.Wrap(step.Kind, step.ID, step.Title+" failed", err)
		}
		if state.logger != nil {
			state.logger.InfoTag("Bootstrap", "%s done", step.Title)
		}
	}
	return nil
}

func loadConfigStep(ctx context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	if err := result.Config.Validate(); err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggerStep(ctx context.Context, state *appState) error {
	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: state.config.Log.Level,
		LogDir:   state.config.Log.Dir,
		LogFile:  state.config.Log.File,
	})
	if err != nil {
		return err
	}
	utils.DefaultLogger = logger
	state.logger = logger

	if state.configPath != "" {
		logger.InfoTag("Bootstrap", "configuration loaded from %s", state.configPath)
	} else {
		logger.InfoTag("Bootstrap", "no config file found, using defaults")
	}
	return nil
}

func initEventBusStep(ctx context.Context, state *appState) error {
	state.bus = eventbus.GetAsync()
	return eventbus.NewLoggingListener(state.logger).Register(state.bus)
}

func initProviderStep(ctx context.Context, state *appState) error {
	name, providerConfig, err := state.config.SelectedProvider()
	if err != nil {
		return err
	}

	provider, err := providers.Create(name, providerConfig, state.logger)
	if err != nil {
		return err
	}

	state.provider = provider
	state.providerName = name
	state.logger.InfoTag("Bootstrap", "provider %s (%s) selected", name, providerConfig.Type)
	return nil
}

func initGatewayStep(ctx context.Context, state *appState) error {
	_, providerConfig, err := state.config.SelectedProvider()
	if err != nil {
		return err
	}

	state.gateway = verification.NewGateway(verification.GatewayOptions{
		Provider:       state.provider,
		ProviderConfig: providerConfig,
		Security:       &state.config.Security,
		Compression:    state.config.Compression,
		Logger:         state.logger,
		Bus:            state.bus,
	})
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine
	apiGroup := httpRouter.API

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "api not found", nil)
			return
		}
		c.File(config.Web.StaticDir + "/index.html")
	})

	facematchService, err := httpfacematch.NewService(state.gateway, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap,
			"facematch:new-service", "failed to create face-match service", err)
	}

	webapiService, err := httpwebapi.NewService(state.providerName, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap,
			"webapi:new-service", "failed to create webapi service", err)
	}

	if err := facematchService.Register(groupCtx, apiGroup); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap,
			"facematch:register", "failed to register face-match routes", err)
	}
	if err := webapiService.Register(groupCtx, apiGroup); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap,
			"webapi:register", "failed to register webapi routes", err)
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "openapi doc unavailable: %v", err)
			httptransport.RespondError(c, http.StatusInternalServerError,
				"failed to generate openapi spec", nil)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "listening on http://%s", httpServer.Addr)
		logger.InfoTag("HTTP", "face-match endpoint: POST http://localhost:%d/api/face-match", config.Server.Port)
		logger.InfoTag("HTTP", "api docs: http://localhost:%d/docs", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *utils.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("Bootstrap", "received %v, shutting down", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Bootstrap", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("Bootstrap", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("Bootstrap", "shutdown timed out, forcing exit")
		return goerrors.New("shutdown timed out")
	}
	return nil
}
