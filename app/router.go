package app

import (
	"citricloud/backend/app/auth"
	"citricloud/backend/app/file"
	"citricloud/backend/app/root"
	"citricloud/backend/config"
	"citricloud/backend/db"
	"citricloud/backend/internal"
	"citricloud/backend/internal/service"
	"citricloud/backend/internal/storage"
	"citricloud/backend/internal/store"
	"citricloud/backend/pkg/middleware"
	"citricloud/backend/pkg/security"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter opens the database, connects the storage backend and returns the
// router serving the whole API
func NewRouter(cfg *config.Config) (*gin.Engine, error) {
	d, err := db.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	backend, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage, %w", cfg.Storage.Type, err)
	}

	argon := security.New(cfg.Argon.Memory, cfg.Argon.Iterations, cfg.Argon.Parallelism)

	deps := &internal.Deps{
		Users:  store.NewUserStore(d, argon),
		Argon:  argon,
		Tokens: security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		Relay:  service.NewRelay(backend, cfg.Upload.Directory),
	}

	return Routes(cfg, deps), nil
}

// Routes wires the endpoints to already constructed dependencies
func Routes(cfg *config.Config, d *internal.Deps) *gin.Engine {
	router := gin.New()

	corsCfg := cors.Config{
		AllowOrigins:  cfg.Host.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Host.CORSOrigins) == 0 || slices.Contains(cfg.Host.CORSOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}

	router.Use(
		gin.Recovery(),
		cors.New(corsCfg),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(d.Tokens, d.Users)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateBurst,
	})

	m := router.Group("/api")
	{
		// GET /api/health		-> Used to check if the server is alive
		m.GET("/health", root.Health)

		// GET /api/message		-> Status message with the running environment
		m.GET("/message", func(c *gin.Context) { root.Message(c, cfg.App.Environment) })

		// POST /api/upload		-> Relays a multipart file to the storage box
		m.POST("/upload", jwt, middleware.BodySizeLimiter(cfg.Upload.MaxSize), func(c *gin.Context) { file.FileUpload(c, d) })
	}

	a := m.Group("/auth", rateLimiter, middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/register	-> Registers a new user and returns a JWT token
		a.POST("/register", func(c *gin.Context) { auth.UserRegister(c, d) })

		// POST /api/auth/login		-> Logs in a user and returns a JWT token
		a.POST("/login", func(c *gin.Context) { auth.UserLogin(c, d) })

		// GET /api/auth/me		-> Returns the identity behind a JWT token
		a.GET("/me", jwt, auth.Me)
	}

	return router
}
