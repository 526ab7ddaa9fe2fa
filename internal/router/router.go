package router

import (
	"crimewatch/internal/handlers"
	"crimewatch/internal/middleware"
	"crimewatch/internal/services"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps carries everything the handlers need. Built once in main, no globals.
type Deps struct {
	DB         *gorm.DB
	Tokens     *services.TokenService
	Dispatcher *services.AlertDispatcher // may be nil
	Cache      *utils.Cache
	Logger     *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Tokens, deps.Logger)
	crimeHandler := handlers.NewCrimeHandler(deps.DB, deps.Dispatcher, deps.Logger)
	voteHandler := handlers.NewVoteHandler(deps.DB, deps.Logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.DB, deps.Logger)
	sosHandler := handlers.NewSOSHandler(deps.DB, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Cache, deps.Logger)

	authRequired := middleware.Auth(deps.Tokens, deps.DB)
	authOptional := middleware.AuthOptional(deps.Tokens, deps.DB)

	// Authentication
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authRequired, authHandler.Me)
		auth.PUT("/users/me", authRequired, authHandler.UpdateMe)
	}

	// Crime reports. Listing and detail are public.
	crime := r.Group("/crime")
	{
		crime.POST("/crimes", authRequired, crimeHandler.Create)
		crime.GET("/", crimeHandler.List)
		crime.GET("/:id", crimeHandler.Get)
		crime.PUT("/:id", authRequired, crimeHandler.Update)
		crime.DELETE("/:id", authRequired, crimeHandler.Delete)
	}

	// Voting accepts both identified and anonymous actors.
	vote := r.Group("/vote")
	{
		vote.POST("/crimes/:id/vote", authOptional, voteHandler.Cast)
		vote.GET("/crimes/:id/votes", voteHandler.Tally)
	}

	// Geo-radius alert subscriptions
	alerts := r.Group("/alerts")
	alerts.Use(authRequired)
	{
		alerts.POST("/subscribe", subscriptionHandler.Subscribe)
		alerts.GET("/subscribe", subscriptionHandler.Get)
	}

	// SOS
	sos := r.Group("/sos")
	{
		sos.POST("/send_sos", authOptional, sosHandler.Send)
		sos.GET("/sos_alerts", authRequired, middleware.RequireAdmin(), sosHandler.List)
	}

	// Moderation
	admin := r.Group("/admin")
	admin.Use(authRequired)
	{
		admin.POST("/crime/:id/flag", middleware.RequireAdmin(), adminHandler.Flag)
		admin.GET("/crimes/flagged", adminHandler.FlaggedCrimes)
		admin.GET("/statistics", middleware.RequireAdmin(), adminHandler.Statistics)
	}
}
