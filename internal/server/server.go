package server

import (
	"context"
	"net/http"

	"startarot/internal/astrology"
	"startarot/internal/auth"
	"startarot/internal/config"
	"startarot/internal/consultation"
	"startarot/internal/llm"
	"startarot/internal/notification"
	"startarot/internal/oracle"
	"startarot/internal/processor"
	"startarot/internal/settings"
	"startarot/internal/user"
	"startarot/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	db         *sqlx.DB
	config     *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, whatsapp *notification.WhatsAppService) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())

	userRepo := user.NewRepository(db)
	oracleRepo := oracle.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	settingsRepo := settings.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	consultationRepo := consultation.NewRepository(db)

	completer := llm.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens)
	charts := astrology.NewClient(cfg.AstrologyAPIURL, cfg.AstrologyAPIKey)

	userHandler := user.NewHandler(user.NewService(userRepo, cfg.JWTSecret))
	oracleHandler := oracle.NewHandler(oracleRepo)
	walletHandler := wallet.NewHandler(walletRepo)
	settingsHandler := settings.NewHandler(settingsRepo)
	notificationHandler := notification.NewHandler(notificationRepo)

	consultationService := consultation.NewService(
		consultationRepo, oracleRepo, walletRepo, userRepo, settingsRepo, notificationRepo, whatsapp)
	consultationHandler := consultation.NewHandler(consultationService)

	processorService := processor.NewService(
		consultationRepo, oracleRepo, userRepo, settingsRepo, notificationRepo, completer, charts, whatsapp)
	processorHandler := processor.NewHandler(processorService, cfg.SweepSecret)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me", userHandler.UpdateMe)

		protected.GET("/oracles", oracleHandler.ListOracles)
		protected.GET("/oracles/:oracleID", oracleHandler.GetOracle)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.GET("/wallet/transactions", walletHandler.GetTransactions)
		protected.POST("/wallet/topup", walletHandler.TopUp)

		protected.POST("/consultations", consultationHandler.Submit)
		protected.GET("/consultations", consultationHandler.List)
		protected.GET("/consultations/:id", consultationHandler.Get)
		protected.POST("/consultations/:id/cancel", consultationHandler.Cancel)
		protected.POST("/consultations/:id/complete", consultationHandler.Complete)
		// Rejection is allowed for the assigned oracle or an admin; the
		// service enforces the role check.
		protected.POST("/consultations/:id/reject", consultationHandler.Reject)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:notificationID/read", notificationHandler.MarkRead)
	}

	oracleOnly := router.Group("/")
	oracleOnly.Use(authMiddleware, auth.RequireRole(auth.RoleOracle))
	{
		oracleOnly.PUT("/oracle/status", oracleHandler.SetOnline)
		oracleOnly.POST("/consultations/:id/answer", consultationHandler.Answer)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/oracles", oracleHandler.AdminCreate)
		admin.POST("/oracles/:oracleID/schedules", oracleHandler.AdminAddSchedule)
		admin.GET("/settings/:key", settingsHandler.Get)
		admin.PUT("/settings/:key", settingsHandler.Set)
		admin.POST("/wallets/:userID/grant", walletHandler.AdminGrant)
		admin.POST("/wallets/:userID/gift", walletHandler.AdminGift)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.POST("/internal/process-consultations", processorHandler.Sweep)
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
