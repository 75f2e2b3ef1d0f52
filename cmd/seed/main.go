package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/o-vilna/movie-api/core"
)

// Seeds the movie catalog from a YAML file. Safe to run repeatedly: existing
// actors and movies are left untouched.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg := core.Load()
	ctx := context.Background()

	path := cfg.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read seed file %s: %v", path, err)
	}

	catalog, err := core.ParseCatalog(raw)
	if err != nil {
		log.Fatalf("failed to parse catalog: %v", err)
	}

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	movieRepo := core.NewPgMovieRepository(db)
	actorRepo := core.NewPgActorRepository(db)

	if err := core.SeedCatalog(ctx, movieRepo, actorRepo, catalog); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	log.Printf("seeded %d movies and %d actors from %s", len(catalog.Movies), len(catalog.Actors), path)
}
