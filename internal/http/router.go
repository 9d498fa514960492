package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/open-builders/gws-backend/docs"
	"github.com/open-builders/gws-backend/internal/common/middleware"
	du "github.com/open-builders/gws-backend/internal/domain/user"
)

// RouterDeps are the collaborators the HTTP layer needs.
type RouterDeps struct {
	Giveaways   GiveawayService
	Users       du.Repository
	JWTSecret   string
	CORSOrigins []string
	Debug       bool

	Storage   Pinger
	Redis     Pinger
	Scheduler SchedulerHealth
}

// @title GWS API
// @version 1.0
// @description Giveaway lifecycle backend.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// NewRouter builds the gin engine with middlewares and routes wired.
func NewRouter(d RouterDeps) *gin.Engine {
	if !d.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	corsConfig := cors.DefaultConfig()
	if len(d.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	NewHealthHandlers(d.Storage, d.Redis, d.Scheduler).Register(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	NewGiveawayHandlers(d.Giveaways, d.Users).Register(api.Group("/gws"), d.JWTSecret)

	return router
}
