package main

import (
	"context"
	"flag"
	"log"

	"github.com/ktz03/tab-game/internal/config"
	"github.com/ktz03/tab-game/internal/logger"
	"github.com/ktz03/tab-game/internal/repository"
	"github.com/ktz03/tab-game/internal/service"
)

// Registers a user in the configured store and prints a token for it.
func main() {
	nick := flag.String("nick", "testuser", "nickname")
	password := flag.String("password", "secret", "password")
	flag.Parse()

	logger.Init("info", false)
	cfg := config.Load()
	ctx := context.Background()

	store, err := repository.Open(ctx, repository.Options{
		Backend:       cfg.StoreBackend,
		DataDir:       cfg.DataDir,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	accounts := service.NewAccountService(store, cfg.BcryptCost)
	if err := accounts.Load(ctx); err != nil {
		log.Fatalf("load users: %v", err)
	}

	existed := accounts.Exists(*nick)
	if err := accounts.Register(ctx, *nick, *password); err != nil {
		log.Fatalf("register %s: %v", *nick, err)
	}
	if existed {
		log.Printf("user already exists nick=%s\n", *nick)
	} else {
		log.Printf("user created nick=%s store=%s\n", *nick, cfg.StoreBackend)
	}

	service.InitJWT(cfg.JWTSecret)
	token, err := service.GenerateJWT(*nick)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
