package server

import (
	"net/http"
	"time"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/config"
	"github.com/catelog/catetube-backend/internal/handler"
	"github.com/catelog/catetube-backend/internal/logging"
	appmw "github.com/catelog/catetube-backend/internal/middleware"
	"github.com/catelog/catetube-backend/internal/report"
	"github.com/catelog/catetube-backend/internal/repository"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e       *echo.Echo
	Sweeper *service.Sweeper
	Tracker service.TrackerService
	Reports *report.Manager
}

func New(db *gorm.DB, cfg *config.Config, clk clock.Clock, log logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
	}))

	repos := repository.NewRegistry(db)
	trackerCache := cache.New(cfg.CacheTTL)
	secret := []byte(cfg.SecretKey)

	trackerSvc := service.NewTrackerService(repos, trackerCache, clk, cfg.DefaultDailyTargetML)
	feedingSvc := service.NewFeedingService(repos, trackerCache, clk, cfg.DefaultDailyTargetML)
	medicationSvc := service.NewMedicationService(repos, clk)
	authSvc := service.NewAuthService(repos, clk, secret, cfg.TokenValidity)
	sweeper := service.NewSweeper(repos, clk, cfg.DeactivateAfter, cfg.DeleteAfter)

	reportGen := report.NewGenerator(repos, clk)
	reportMgr := report.NewManager(reportGen, log, cfg.ReportWorkers)

	authHandler := handler.NewAuthHandler(authSvc, sweeper)
	trackerHandler := handler.NewTrackerHandler(trackerSvc, trackerCache, clk)
	feedingHandler := handler.NewFeedingHandler(feedingSvc, clk)
	medicationHandler := handler.NewMedicationHandler(medicationSvc)
	reportHandler := handler.NewReportHandler(reportMgr)

	authMw := appmw.NewAuthMiddleware(secret)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "CatETube Tracker API",
			"version": "2.0",
			"status":  "running",
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": clk.Now().Format(time.RFC3339),
		})
	})

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout, authMw.RequireAuth)
	authGroup.GET("/me", authHandler.Me, authMw.RequireAuth)
	authGroup.PUT("/profile", authHandler.UpdateProfile, authMw.RequireAuth)
	authGroup.POST("/change-password", authHandler.ChangePassword, authMw.RequireAuth)
	authGroup.POST("/deactivate", authHandler.Deactivate, authMw.RequireAuth)
	authGroup.POST("/delete", authHandler.Delete, authMw.RequireAuth)
	authGroup.POST("/cleanup-inactive", authHandler.CleanupInactive, authMw.RequireAuth)

	feedingGroup := api.Group("/feeding", authMw.RequireAuth)
	feedingGroup.POST("", feedingHandler.Create)
	feedingGroup.GET("", feedingHandler.List)

	medGroup := api.Group("/medication_log", authMw.RequireAuth)
	medGroup.POST("", medicationHandler.Create)
	medGroup.GET("", medicationHandler.List)

	trackerGroup := api.Group("/tracker", authMw.RequireAuth)
	trackerGroup.GET("/today", trackerHandler.GetToday)
	trackerGroup.POST("/today", trackerHandler.UpdateToday)
	trackerGroup.POST("/reset", trackerHandler.Reset)
	trackerGroup.GET("/history", trackerHandler.History)
	trackerGroup.GET("/stats", trackerHandler.Stats)
	trackerGroup.DELETE("/cleanup-old", trackerHandler.CleanupOld)

	reportGroup := api.Group("/report", authMw.RequireAuth)
	reportGroup.POST("/feeding", reportHandler.SubmitFeeding)
	reportGroup.POST("/medication", reportHandler.SubmitMedication)
	reportGroup.POST("/combined", reportHandler.SubmitCombined)
	reportGroup.GET("/status/:id", reportHandler.Status)
	reportGroup.GET("/download/:id", reportHandler.Download)
	reportGroup.DELETE("/cleanup/:id", reportHandler.Cleanup)
	reportGroup.GET("/active", reportHandler.Active)

	return &Server{e: e, Sweeper: sweeper, Tracker: trackerSvc, Reports: reportMgr}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Echo() *echo.Echo {
	return s.e
}
