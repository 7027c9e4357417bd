package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	// FareAPIURL is the base URL of the fare/payment backend.
	FareAPIURL     string
	FareAPITimeout time.Duration

	// CheckoutKeyID is the public key handed to the hosted checkout widget.
	CheckoutKeyID string
	CheckoutName  string

	SessionSecret string
	SessionTTL    time.Duration

	CORSAllowedOrigins []string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	RabbitMQURL string
	DBDSN       string
}

// LoadEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	secret := getenv("SESSION_SECRET", "")
	if secret == "" {
		secret = "dev-session-secret-change-me"
		log.Println("warning: SESSION_SECRET not set, using development secret")
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            strings.TrimSpace(os.Getenv("GIN_MODE")),
		FareAPIURL:         strings.TrimRight(getenv("FARE_API_URL", "http://localhost:5000"), "/"),
		FareAPITimeout:     parseDur(getenv("FARE_API_TIMEOUT", "15s"), 15*time.Second),
		CheckoutKeyID:      getenv("CHECKOUT_KEY_ID", ""),
		CheckoutName:       getenv("CHECKOUT_NAME", "TSRTC e-Ticket"),
		SessionSecret:      secret,
		SessionTTL:         parseDur(getenv("SESSION_TTL", "2h"), 2*time.Hour),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            atoi(getenv("REDIS_DB", "0")),
		CatalogCacheTTL:    parseDur(getenv("CATALOG_CACHE_TTL", "5m"), 5*time.Minute),
		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		DBDSN:              getenv("DB_DSN", ""),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
