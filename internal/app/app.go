package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/luxbridge-ai/luxbridge-auth/internal/config"
	"github.com/luxbridge-ai/luxbridge-auth/internal/handler"
	"github.com/luxbridge-ai/luxbridge-auth/internal/identity"
	"github.com/luxbridge-ai/luxbridge-auth/internal/platform"
	"github.com/luxbridge-ai/luxbridge-auth/internal/repository"
	"github.com/luxbridge-ai/luxbridge-auth/internal/service"
	"github.com/luxbridge-ai/luxbridge-auth/internal/token"
	"github.com/luxbridge-ai/luxbridge-auth/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Store())

	issuer := token.NewIssuer(
		cfg.OAuth.Issuer,
		cfg.OAuth.SigningSecret,
		cfg.Platform.SigningSecret,
	)
	verifier := identity.NewHTTPVerifier(
		cfg.Identity.VerifierURL,
		cfg.Identity.AppID,
		cfg.Identity.AppSecret,
		cfg.Identity.RequestTimeout.Duration,
	)
	platformClient := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.RequestTimeout.Duration)

	rateLimiter := service.NewRateLimiter(
		infra.Store(),
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		infra.Logger(),
	)
	healthChecker := NewHealthChecker(infra)

	sessionService := service.NewSessionService(repos.Session, cfg.Session.TTL.Duration, infra.Logger())
	oauthService := service.NewOAuthService(
		repos.Client,
		repos.AuthCode,
		repos.Token,
		repos.User,
		sessionService,
		verifier,
		issuer,
		cfg.Security.BCryptCost,
		cfg.OAuth.AuthCodeExpiry.Duration,
		cfg.OAuth.AccessTokenExpiry.Duration,
		infra.Logger(),
	)
	platformService := service.NewPlatformService(
		repos.PlatformLink,
		sessionService,
		platformClient,
		cfg.Platform.DefaultLinkTTL.Duration,
		infra.Logger(),
	)
	proxyService := service.NewProxyService(sessionService, platformService, repos.User, platformClient, infra.Logger())

	oauthHandler := handler.NewOAuthHandler(oauthService, cfg.OAuth.Issuer, infra.Metrics())
	platformHandler := handler.NewPlatformHandler(platformService, sessionService, proxyService, infra.Metrics())
	sessionHandler := handler.NewSessionHandler(sessionService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("luxbridge-auth"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, oauthHandler, platformHandler, sessionHandler, oauthService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	oauthHandler *handler.OAuthHandler,
	platformHandler *handler.PlatformHandler,
	sessionHandler *handler.SessionHandler,
	oauthService service.OAuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)
	router.GET("/.well-known/oauth-authorization-server", oauthHandler.Discovery)

	router.POST("/register",
		handler.RateLimitMiddleware(rateLimiter, handler.IPBasedKey),
		oauthHandler.Register,
	)
	router.POST("/token",
		handler.RateLimitMiddleware(rateLimiter, handler.IPBasedKey),
		oauthHandler.Token,
	)

	authorize := router.Group("/authorize")
	{
		authorize.POST("/store-code", oauthHandler.StoreCode)
		authorize.POST("/complete", oauthHandler.CompleteAuthorization)
		authorize.POST("/verify-code", oauthHandler.VerifyCode)
	}

	// platform linking happens during the login ceremony, before a Bearer
	// token exists; everything else on /platforms requires one
	router.POST("/platforms/:platform/link/complete", platformHandler.LinkComplete)

	authed := router.Group("/", handler.AuthMiddleware(oauthService))
	{
		authed.GET("/platforms", platformHandler.ListLinks)
		authed.POST("/platforms/validate", platformHandler.ValidateAll)
		authed.DELETE("/platforms/:platform/link", platformHandler.Unlink)
		authed.POST("/platforms/:platform/call", platformHandler.Call)

		authed.GET("/sessions", sessionHandler.List)
		authed.GET("/sessions/platforms", sessionHandler.ConnectedPlatforms)
		authed.POST("/sessions/:sessionId/extend", sessionHandler.Extend)
		authed.DELETE("/sessions/:sessionId", sessionHandler.Delete)

		authed.POST("/admin/sessions/sweep", sessionHandler.Sweep)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
