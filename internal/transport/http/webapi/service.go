// Package webapi exposes the operational endpoints: health and host metrics.
package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	platerrors "facegate-server-go/internal/platform/errors"
	httptransport "facegate-server-go/internal/transport/http"
	"facegate-server-go/internal/utils"
)

// Service serves health and system information.
type Service struct {
	providerMode string
	logger       *utils.Logger
	startedAt    time.Time
}

func NewService(providerMode string, logger *utils.Logger) (*Service, error) {
	if providerMode == "" {
		return nil, platerrors.New(platerrors.KindConfig, "webapi.NewService", "provider mode is required")
	}
	return &Service{
		providerMode: providerMode,
		logger:       logger,
		startedAt:    time.Now(),
	}, nil
}

// Register registers the operational routes.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/health", s.handleHealth)
	router.GET("/system", s.handleSystem)
	s.logger.InfoTag("HTTP", "webapi routes registered")
	return nil
}

// handleHealth reports liveness and the active provider. The body is flat,
// not enveloped; load balancers and uptime probes read it directly.
//
//	@Summary	Service liveness and active provider
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/health [get]
func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"mode":      s.providerMode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSystem reports host resource usage.
//
//	@Summary	Host CPU, memory and uptime
//	@Produce	json
//	@Success	200	{object}	httptransport.APIResponse
//	@Router		/api/system [get]
func (s *Service) handleSystem(c *gin.Context) {
	info := gin.H{
		"provider_mode":  s.providerMode,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory"] = gin.H{
			"total":        vm.Total,
			"used":         vm.Used,
			"used_percent": vm.UsedPercent,
		}
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info["cpu_percent"] = percents[0]
	}
	if h, err := host.Info(); err == nil {
		info["host"] = gin.H{
			"hostname": h.Hostname,
			"os":       h.OS,
			"platform": h.Platform,
			"uptime":   h.Uptime,
		}
	}

	httptransport.RespondSuccess(c, http.StatusOK, info)
}
