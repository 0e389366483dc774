// Command seed loads a YAML question bank into the practice catalog.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"
	"time"

	"practice-service/internal/config"
	"practice-service/internal/db"
	"practice-service/internal/repository"
)

func main() {
	path := flag.String("file", "data/questions.yaml", "question bank to load")
	dryRun := flag.Bool("dry-run", false, "validate only, do not write")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	questions, err := loadBank(f)
	f.Close()
	if err != nil {
		log.Fatalf("Invalid question bank %s:\n%v", *path, err)
	}

	counts := summarize(questions)
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		log.Printf("  %-32s %d", c, counts[c])
	}
	log.Printf("Validated %d questions in %d categories", len(questions), len(categories))
	if *dryRun {
		return
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, database, err := db.ConnectMongo(ctx, cfg.MongoDB)
	if err != nil {
		log.Fatalf("MongoDB init failed: %v", err)
	}
	defer db.DisconnectMongo(context.Background(), client)

	repo := repository.NewQuestionRepository(database)
	if err := repo.InitializeIndexes(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
	inserted, updated, err := repo.UpsertMany(ctx, questions)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded catalog: %d inserted, %d updated", inserted, updated)

	if redisClient := db.NewRedisClient(ctx, cfg.Redis); redisClient != nil {
		defer redisClient.Close()
		cache := repository.NewCatalogCache(repo, redisClient, cfg.Redis.TTL)
		if err := cache.Invalidate(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}
