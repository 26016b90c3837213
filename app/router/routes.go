// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/handlers"
	"github.com/amirphl/masuk10/app/middleware"
	"github.com/amirphl/masuk10/config"
	_ "github.com/amirphl/masuk10/docs"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	ShortLink      handlers.ShortLinkHandlerInterface
	ShortLinkAdmin handlers.ShortLinkAdminHandlerInterface
	AuthAdmin      handlers.AuthAdminHandlerInterface
	Analytics      handlers.AnalyticsHandlerInterface
	User           handlers.UserHandlerInterface
	Content        handlers.ContentHandlerInterface
	Media          handlers.MediaHandlerInterface
	Theme          handlers.ThemeHandlerInterface
	Landing        handlers.LandingHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	logger         *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, authMiddleware *middleware.AuthMiddleware, log *zap.Logger) Router {
	r := &FiberRouter{
		cfg:            cfg,
		handlers:       h,
		authMiddleware: authMiddleware,
		logger:         log,
	}

	r.app = fiber.New(fiber.Config{
		AppName:      "Masuk10",
		ServerHeader: "Masuk10",
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		TrustProxy:   len(cfg.Server.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Proxies: cfg.Server.TrustedProxies,
		},
		ProxyHeader: cfg.Server.ProxyHeader,
	})

	return r
}

// SetupRoutes configures all application routes. The shortlink catch-all is registered last.
func (r *FiberRouter) SetupRoutes() {
	r.logger.Info("setting up routes")

	// Global middleware
	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Uploaded media
	r.app.Use("/uploads", static.New(r.cfg.Media.UploadDir, static.Config{
		MaxAge: 3600,
	}))

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/swagger.json", cache.New(cache.Config{
			Expiration: 5 * time.Minute,
		}), r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		r.logger.Info("API documentation enabled for development")
	}

	// General rate limiting for the API
	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	// Public site data
	api.Get("/content", r.handlers.Content.Get)
	api.Get("/themes/active", r.handlers.Theme.Active)

	// Admin authentication with stricter rate limiting
	auth := api.Group("/auth/admin", r.rateLimiter(r.cfg.Security.AuthRateLimit, nil))
	auth.Post("/captcha/init", r.handlers.AuthAdmin.InitCaptcha)
	auth.Post("/login", r.handlers.AuthAdmin.Login)
	auth.Post("/refresh", r.handlers.AuthAdmin.Refresh)
	auth.Post("/logout", r.authMiddleware.AdminAuthenticate(), r.handlers.AuthAdmin.Logout)
	auth.Get("/me", r.authMiddleware.AdminAuthenticate(), r.handlers.AuthAdmin.Me)

	admin := api.Group("/admin", r.authMiddleware.AdminAuthenticate())

	shortlinks := admin.Group("/shortlinks")
	shortlinks.Get("/", r.handlers.ShortLinkAdmin.List)
	shortlinks.Post("/", r.handlers.ShortLinkAdmin.Create)
	shortlinks.Get("/:id", r.handlers.ShortLinkAdmin.Get)
	shortlinks.Put("/:id", r.handlers.ShortLinkAdmin.Update)
	shortlinks.Delete("/:id", r.handlers.ShortLinkAdmin.Delete)
	shortlinks.Get("/:id/qrcode", r.handlers.ShortLinkAdmin.QRCode)

	analytics := admin.Group("/analytics")
	analytics.Get("/stats", r.handlers.Analytics.Stats)
	analytics.Get("/export.csv", r.handlers.Analytics.ExportCSV)
	analytics.Get("/export.xlsx", r.handlers.Analytics.ExportExcel)

	// Any signed-in user may change their own password; the flow checks the target
	admin.Patch("/users/:id/password", r.handlers.User.ChangePassword)
	users := admin.Group("/users", r.authMiddleware.RequireRole(utils.RoleAdmin))
	users.Get("/", r.handlers.User.List)
	users.Post("/", r.handlers.User.Create)
	users.Get("/:id", r.handlers.User.Get)
	users.Patch("/:id", r.handlers.User.Update)
	users.Delete("/:id", r.handlers.User.Delete)

	admin.Put("/content", r.handlers.Content.Upsert)

	media := admin.Group("/media")
	media.Post("/upload", r.handlers.Media.Upload)
	media.Get("/", r.handlers.Media.List)
	media.Delete("/:id", r.handlers.Media.Delete)
	media.Get("/:id/preview", r.handlers.Media.Preview)

	themes := admin.Group("/themes")
	themes.Get("/", r.handlers.Theme.List)
	themes.Post("/", r.handlers.Theme.Create)
	themes.Put("/active", r.handlers.Theme.Activate)
	themes.Get("/customize", r.handlers.Theme.Customization)
	themes.Put("/customize", r.handlers.Theme.Customize)

	// Unknown API paths get a JSON 404 instead of reaching the redirector
	api.Use(r.notFoundHandler)

	// Site pages
	r.app.Get("/", r.handlers.Landing.Page)
	r.app.Get("/admin", r.handlers.Landing.AdminEntry)
	r.app.Get("/admin/*", r.handlers.Landing.AdminEntry)

	// Shortlink redirects, kept last
	r.app.Get("/:code", r.handlers.ShortLink.Visit)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	r.logger.Info("routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: generateRequestID,
	}))

	// Recovery middleware logging the panic with request context
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("panic recovered",
				zap.Any("error", e),
				zap.String("request_id", requestid.FromContext(c)),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
				zap.Stack("stack"),
			)
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// Images and spreadsheets are already compressed
				contentType := c.Get("Content-Type")
				return strings.Contains(contentType, "image/") ||
					strings.HasPrefix(c.Path(), "/uploads") ||
					strings.HasSuffix(c.Path(), ".xlsx")
			},
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     os.Stdout,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}
}

func (r *FiberRouter) rateLimiter(limit int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.logger.Info("starting server", zap.String("address", address))
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.Deployment.Version,
			"service":   "masuk10",
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	c.Set("Content-Type", "text/html")
	return c.SendString(swaggerUIPage)
}

// Serve the registered Swagger specification
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// errorHandler renders errors that escape the handlers
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	if code >= fiber.StatusInternalServerError {
		r.logger.Error("request failed",
			zap.Int("status", code),
			zap.String("path", c.Path()),
			zap.String("request_id", requestid.FromContext(c)),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Masuk10 API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`
