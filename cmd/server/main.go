package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkduy/cinevault/adapters/catalog"
	"github.com/nkduy/cinevault/adapters/event"
	httpAdapter "github.com/nkduy/cinevault/adapters/http"
	"github.com/nkduy/cinevault/adapters/persistence"
	favoriteUC "github.com/nkduy/cinevault/internal/application/usecase/favorite"
	trendingUC "github.com/nkduy/cinevault/internal/application/usecase/trending"
	"github.com/nkduy/cinevault/internal/config"
	"github.com/nkduy/cinevault/pkg/auth"
	"github.com/nkduy/cinevault/pkg/logger"
	"github.com/nkduy/cinevault/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "cinevault-api")
		if err != nil {
			appLogger.Fatal("cannot init tracer", err)
		}
		defer tp.Shutdown(context.Background())
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	favoriteRepo := persistence.NewPostgresFavoriteRepo(dbPool)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	tmdbClient := catalog.NewTMDBClient(cfg)

	// Use cases
	favoriteUseCase := favoriteUC.NewFavoriteUseCase(favoriteRepo, kafkaClient, cfg.Favorites.PageSize, appLogger)
	trendingUseCase := trendingUC.NewTrendingUseCase(tmdbClient, favoriteUseCase, redisClient, cfg.TMDB.CacheTTL, appLogger)

	// HTTP handlers
	favoriteHandler := httpAdapter.NewFavoriteHandler(favoriteUseCase)
	trendingHandler := httpAdapter.NewTrendingHandler(trendingUseCase)

	// Middleware
	requireAuth := httpAdapter.Authenticate(jwtSvc, httpAdapter.AuthRequired)
	requireVerified := httpAdapter.Authenticate(jwtSvc, httpAdapter.AuthRequired, httpAdapter.RequireVerifiedAccount(userRepo))
	optionalAuth := httpAdapter.Authenticate(jwtSvc, httpAdapter.AuthOptional)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpAdapter.ErrorMiddleware(appLogger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		api.GET("/trending/:trendingType/:timeWindow",
			optionalAuth,
			httpAdapter.Validate[httpAdapter.TrendingParams](httpAdapter.LocationParams),
			httpAdapter.Validate[httpAdapter.TrendingQuery](httpAdapter.LocationQuery),
			trendingHandler.GetTrending,
		)

		favorites := api.Group("/favorites")
		{
			favorites.POST("",
				requireVerified,
				httpAdapter.Validate[httpAdapter.AddFavoriteRequest](httpAdapter.LocationBody),
				favoriteHandler.AddFavorite,
			)
			favorites.GET("/me",
				requireAuth,
				httpAdapter.Validate[httpAdapter.GetMyFavoritesQuery](httpAdapter.LocationQuery),
				favoriteHandler.GetMyFavorites,
			)
			favorites.DELETE("/:favoriteId",
				requireVerified,
				httpAdapter.Validate[httpAdapter.DeleteFavoriteByIDParams](httpAdapter.LocationParams),
				favoriteHandler.DeleteFavoriteByID,
			)
			favorites.DELETE("/medias/:mediaId/:mediaType",
				requireVerified,
				httpAdapter.Validate[httpAdapter.DeleteFavoriteByMediaParams](httpAdapter.LocationParams),
				favoriteHandler.DeleteFavoriteByMedia,
			)
		}
	}

	appLogger.Info("Server running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("Cannot run server", err)
	}
}
