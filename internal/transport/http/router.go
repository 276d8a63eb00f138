package httptransport

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"facegate-server-go/internal/platform/config"
	"facegate-server-go/internal/utils"
)

// Options configures the HTTP router builder.
type Options struct {
	Config     *config.Config
	Logger     *utils.Logger
	StaticRoot string
}

// Router bundles the gin engine with the /api route group.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with logging, recovery, CORS
// and static file serving.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.DefaultLogger
	}

	if strings.EqualFold(opts.Config.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))

	engine.SetTrustedProxies([]string{"0.0.0.0"})

	origins := opts.Config.Web.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if opts.Config.Web.Enabled {
		staticRoot := opts.StaticRoot
		if staticRoot == "" {
			staticRoot = opts.Config.Web.StaticDir
		}
		if staticRoot == "" {
			staticRoot = "./web"
		}
		engine.Use(static.Serve("/", static.LocalFile(staticRoot, true)))
	}

	return &Router{
		Engine: engine,
		API:    engine.Group("/api"),
	}, nil
}

func loggingMiddleware(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger.InfoTag("HTTP", "%s %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			duration,
		)
	}
}
