// Command main runs the database seeder for Ripple.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ripple/internal/config"
	"ripple/internal/seed"
	"ripple/internal/store"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts\n", *numUsers, *numPosts)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Connect to the document store
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Disconnect error: %v", err)
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	s := seed.NewSeeder(store.NewMongoUserStore(db), store.NewMongoPostStore(db))
	if err := s.Seed(ctx, seed.Options{NumUsers: *numUsers, NumPosts: *numPosts}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
