package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore.org/internal/auth"
	"bookstore.org/internal/catalog"
	"bookstore.org/internal/httpapi"
	"bookstore.org/internal/obs"
	"bookstore.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	dsn := os.Getenv("BOOKSTORE_PG_DSN")
	if dsn == "" {
		log.Fatal("BOOKSTORE_PG_DSN is required")
	}
	secret := os.Getenv("BOOKSTORE_AUTH_SECRET")
	if secret == "" {
		log.Fatal("BOOKSTORE_AUTH_SECRET is required")
	}
	addr := os.Getenv("BOOKSTORE_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	authSvc, err := auth.NewService(store, secret)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	catalogSvc, err := catalog.NewService(store)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{Store: store}, version, authSvc, catalogSvc)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting bookstore-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
