// Package httpapi wires the HTTP transport (Gin) to the import engine: the
// middleware stack, the trigger endpoint and the authenticated read
// endpoints, plus health, metrics and optional Swagger UI.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/swim-records/docs"
	"github.com/tbourn/swim-records/internal/auth"
	"github.com/tbourn/swim-records/internal/config"
	"github.com/tbourn/swim-records/internal/http/handlers"
	"github.com/tbourn/swim-records/internal/http/middleware"
	"github.com/tbourn/swim-records/internal/services"
)

// maxBodyBytes caps request bodies; the only body is the optional run mode.
const maxBodyBytes = 64 << 10

// RegisterRoutes attaches the middleware stack and every endpoint to r.
// runner executes import runs; the read services are built over db.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger (Authorization masked)
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. CORS and security headers
//
// API routes then add authentication, the per-user edge rate limiter and
// gzip for the read endpoints.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, runner handlers.ImportRunner, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(runner, &services.RecordsService{DB: db, BatchSize: cfg.FFN.BatchSize}, &services.AuditLogger{DB: db})

	api := groupWithPrefix(r, cfg.APIBasePath)
	// Preflight without an Origin header is not a CORS request; answer it anyway.
	api.OPTIONS("/import", func(c *gin.Context) { c.Status(http.StatusOK) })

	authed := api.Group("", authenticator(cfg.Auth))
	authed.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler())
	{
		authed.POST("/import", middleware.NoStore(), h.TriggerImport)

		read := authed.Group("", gzip.Gzip(gzip.DefaultCompression))
		read.GET("/records", h.ListRecords)
		read.GET("/swimmers/:iuf/bests", h.SwimmerBests)
		read.GET("/import-logs", h.ListImportLogs)
	}
}

// authenticator verifies bearer tokens, or trusts identity headers when
// authentication is disabled for local runs.
func authenticator(cfg config.AuthConfig) gin.HandlerFunc {
	if cfg.Disabled {
		return middleware.DevIdentity()
	}
	return middleware.Authenticate(auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer))
}

// corsConfig allows any origin when none is configured. Preflights answer
// 200 rather than 204.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderUserID, middleware.HeaderUserRole},
		ExposeHeaders:             []string{"X-Request-ID", "ETag", "Content-Length"},
		AllowCredentials:          false,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// limitBody caps the request body at maxBytes; reads beyond it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
