package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eticket/internal/booking"
	"eticket/internal/cache"
	intconfig "eticket/internal/config"
	"eticket/internal/events"
	"eticket/internal/fareapi"
	router "eticket/internal/http"
	"eticket/internal/http/handlers"
	"eticket/internal/repositories"
	"eticket/internal/services"
	"eticket/internal/session"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ticket ledger (optional)
	var ledger services.TicketLedger
	if db, err := intconfig.ConnectDB(env.DBDSN); err != nil {
		log.Printf("warning: ticket ledger disabled: %v", err)
	} else {
		repo := repositories.TicketRepository{DB: db}
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Printf("warning: ticket ledger schema: %v", err)
		}
		ledger = repo
	}
	defer intconfig.CloseDB()

	// Catalog cache (optional)
	var routeCache services.RouteCache
	if env.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.Config{Addr: env.RedisAddr, Password: env.RedisPassword, DB: env.RedisDB})
		if err != nil {
			log.Printf("warning: catalog cache disabled: %v", err)
		} else {
			routeCache = rc
			defer rc.Close()
		}
	}

	var publisher services.TicketPublisher
	if p := events.NewPublisher(env.RabbitMQURL); p.Enabled() {
		publisher = p
		defer p.Close()
	} else {
		log.Println("warning: RABBITMQ_URL not set, ticket events disabled")
	}

	fare := fareapi.New(env.FareAPIURL, env.FareAPITimeout)
	checkout := services.CheckoutService{KeyID: env.CheckoutKeyID, Name: env.CheckoutName}
	if !checkout.Available() {
		log.Println("warning: CHECKOUT_KEY_ID not set, payments are unavailable")
	}

	store := session.NewStore(env.SessionTTL, func(sessionID string) booking.Deps {
		api := fare.WithRequestID(sessionID)
		co := checkout
		co.RequestID = sessionID
		verifier := services.NewVerifyService(api)
		verifier.RequestID = sessionID
		tickets := services.TicketService{Ledger: ledger, Publisher: publisher, RequestID: sessionID}
		return booking.Deps{
			Catalog:  services.CatalogService{Source: api, Cache: routeCache, TTL: env.CatalogCacheTTL, RequestID: sessionID},
			Quotes:   services.QuoteService{API: api, RequestID: sessionID},
			Checkout: co,
			Verifier: verifier,
			OnTicket: tickets.Record,
		}
	})
	go store.Run(ctx, time.Minute)

	gw := &handlers.Gateway{
		Store:    store,
		Tokens:   session.Tokens{Secret: []byte(env.SessionSecret), TTL: env.SessionTTL},
		Checkout: checkout,
		Ledger:   ledger,
	}
	r := router.NewRouter(env, gw)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		// verification may take the full fare API timeout
		WriteTimeout: env.FareAPITimeout + 20*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("booking gateway listening on http://localhost%s (fare api %s)", env.AppAddr, env.FareAPIURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
