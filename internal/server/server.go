package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitrinalab/vitrina/internal/auth"
	"github.com/vitrinalab/vitrina/internal/config"
	"github.com/vitrinalab/vitrina/internal/models"
	"github.com/vitrinalab/vitrina/internal/service"
	"github.com/vitrinalab/vitrina/internal/service/generation"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Accounts     *service.AccountService
	Drafts       *service.DraftService
	Media        *service.MediaService
	Events       *service.EventService
	Orchestrator *generation.Orchestrator
	Suggester    *generation.Suggester
	Scheduler    *service.Scheduler

	tokens     *auth.TokenManager
	middleware *auth.Middleware
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Generation backend: real model when a key is configured, local mock
	// otherwise so the service still runs in development.
	var backend generation.Backend
	if cfg.OpenAI.APIKey != "" {
		backend, err = generation.NewOpenAIBackend(generation.Settings{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			TextModel:  cfg.OpenAI.TextModel,
			ImageModel: cfg.OpenAI.ImageModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generation backend: %w", err)
		}
	} else {
		logger.Warn("no OpenAI API key configured, using mock generation backend")
		backend = generation.MockBackend{}
	}

	ttl, err := time.ParseDuration(cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token TTL: %w", err)
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// Initialize services
	events := service.NewEventService(db, logger)
	mailer := service.NewMailer(&cfg.Email, logger)
	accounts := service.NewAccountService(db, logger, mailer, cfg.Auth.BootstrapAdmin)
	drafts := service.NewDraftService(db, logger, events)
	media := service.NewMediaService(backend, logger, events, cfg.Media.MaxEdgePixels)
	dispatcher := service.NewDispatcher(&cfg.Dispatcher, drafts, events, logger)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, dispatcher)

	// Create router
	router := gin.New()

	srv := &Server{
		Config:       cfg,
		DB:           db,
		Router:       router,
		Logger:       logger,
		Accounts:     accounts,
		Drafts:       drafts,
		Media:        media,
		Events:       events,
		Orchestrator: generation.NewOrchestrator(backend, logger),
		Suggester:    generation.NewSuggester(backend, logger),
		Scheduler:    scheduler,
		tokens:       tokens,
		middleware:   auth.NewMiddleware(tokens, logger, cfg.Auth.AdminTOTPSecret),
	}

	registerValidations()
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

// registerValidations adds the platform tag check to gin's validator engine
// so request structs can declare `binding:"dive,platform"`.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			_, err := models.ParsePlatform(fl.Field().String())
			return err == nil
		})
	}
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", auth.AdminOTPHeader, pipelineSecretHeader}
	s.Router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	api := s.Router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
		}

		// Pipeline status callback authenticates with a shared secret, not
		// a user token.
		api.POST("/drafts/:id/status", s.handleStatusCallback)

		authed := api.Group("", s.middleware.Authenticate())
		{
			approved := authed.Group("", s.requireApproved())
			{
				approved.POST("/content/generate", s.handleGenerateContent)
				approved.POST("/content/suggestions", s.handleSuggestions)
				approved.POST("/media/enhance", s.handleEnhanceImage)
				approved.POST("/media/generate", s.handleGenerateImage)
				approved.POST("/drafts", s.handleSubmitDraft)
				approved.GET("/drafts", s.handleListDrafts)
				approved.GET("/drafts/:id", s.handleGetDraft)
			}

			admin := authed.Group("/admin", s.middleware.RequireAdmin())
			{
				admin.GET("/users", s.handleListUsers)
				admin.PATCH("/users/:id/status", s.handleSetUserStatus)
				admin.PATCH("/users/:id/role", s.handleSetUserRole)
				admin.PATCH("/users/:id/type", s.handleSetUserType)
				admin.GET("/drafts", s.handleListAllDrafts)
				admin.GET("/events", s.handleListEvents)
			}
		}
	}
}

// requireApproved re-checks the live account status on every request so a
// rejection takes effect immediately, not at token expiry.
func (s *Server) requireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		user, err := s.Accounts.Get(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
			c.Abort()
			return
		}

		if user.Status != models.UserApproved {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is not approved"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
