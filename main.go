package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"tripmate/config"
	"tripmate/handlers"
	"tripmate/middleware"
	"tripmate/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetPrefix("[tripmate] ")

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openTokenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}
	defer closeStore()

	// Initialize services
	client := services.NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	session := services.NewSessionService(client, store)
	client.SetTokenSource(session)
	go session.Init(ctx)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	handlers.Routes(r, session, client)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server starting on http://%s (remote API %s, token store %s)", cfg.Addr, cfg.APIBaseURL, cfg.TokenStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openTokenStore connects the configured backend. The returned func releases
// it and is never nil.
func openTokenStore(ctx context.Context, cfg config.Config) (services.TokenStore, func(), error) {
	noop := func() {}
	switch cfg.TokenStore {
	case config.StoreMemory:
		return services.NewMemoryTokenStore(""), noop, nil
	case config.StoreFile:
		store := services.NewFileTokenStore(cfg.TokenDir)
		log.Printf("Storing token in %s", store.Path())
		return store, noop, nil
	case config.StoreRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		store, err := services.NewRedisTokenStore(dialCtx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	case config.StoreMongo:
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := services.NewMongoTokenStore(dialCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			store.Close(closeCtx)
		}, nil
	}
	return nil, noop, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
