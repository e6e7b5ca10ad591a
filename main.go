package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"portfolio-tracker/config"
	"portfolio-tracker/handlers"
	"portfolio-tracker/models"
	"portfolio-tracker/quotes"
	"portfolio-tracker/search"
	"portfolio-tracker/store"
	"portfolio-tracker/valuation"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&models.User{}, &models.Holding{}, &models.Transaction{}); err != nil {
		log.Fatal("failed to migrate models: ", err)
	}

	rdb, err := config.NewRedis(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()

	source := quotes.NewClient(cfg.AlphaVantageAPIKey, cfg.QuoteTimeout, logger)
	cache, err := quotes.NewCache(source, cfg.QuoteFreshness, cfg.QuoteCacheSize, logger)
	if err != nil {
		log.Fatal("failed to build quote cache: ", err)
	}

	holdings := store.NewHoldingsStore(db)
	users := store.NewUserStore(db)
	refresh := store.NewRefreshTokenStore(rdb)
	engine := valuation.NewEngine(holdings, cache, logger)
	searcher := search.NewService(source, search.NewRedisQueryCache(rdb, cfg.SearchCacheTTL, logger), logger)

	router := handlers.NewRouter(
		handlers.NewAuthHandler(users, refresh, cfg.JWTSecret, logger),
		handlers.NewPortfolioHandler(holdings, engine, logger),
		handlers.NewStocksHandler(searcher, logger),
		cfg.JWTSecret,
		[]string{"http://localhost:5173"},
	)

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
