package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/o-vilna/movie-api/core"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg := core.Load()
	ctx := context.Background()

	logFile, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logFile.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer redisClient.Close()

	userRepo := core.NewPgUserRepository(db)
	movieRepo := core.NewPgMovieRepository(db)
	actorRepo := core.NewPgActorRepository(db)
	authService := core.NewRepositoryAuthService(userRepo)
	tokens := core.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	cache := core.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)

	router := core.NewRouter(cfg, tokens, authService, userRepo, movieRepo, actorRepo, cache)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
