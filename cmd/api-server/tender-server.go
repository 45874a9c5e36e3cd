package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/db/migrations"
	"tendermarket/internal/auth"
	"tendermarket/internal/handlers"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		log.Fatal("POSTGRES_CONN env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		log.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	tokenTTL := 60 * time.Minute
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Fatal("invalid TOKEN_TTL_MINUTES", zap.String("value", v))
		}
		tokenTTL = time.Duration(minutes) * time.Minute
	}

	tokens, err := auth.NewJWT(os.Getenv("JWT_SECRET"), tokenTTL)
	if err != nil {
		log.Fatal("cannot create token service", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, log).WithTokens(tokens)
	authMW := auth.NewMiddleware(tokens, store, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(handlers.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Mount("/", h.Routes(authMW))

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	log.Info("starting server", zap.String("addr", serverAddr))
	if err := http.ListenAndServe(serverAddr, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
