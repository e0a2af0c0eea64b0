package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/teamweek/api/internal/adapters/repository/postgres"
	"github.com/teamweek/api/internal/core/services"
)

// Invoked by cron around the weekly rollover: repairs session state
// drift and opens the next week's polling window when none is open.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName string

	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.Parse()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	sessionRepo := postgres.NewSessionRepository(db)
	sessionService := services.NewSessionService(sessionRepo, services.NewKSTClock())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	slog.Info("Starting session janitor run...")

	if err := sessionService.ValidateAndFixSessionState(ctx); err != nil {
		slog.Error("session state repair failed", "error", err)
		os.Exit(1)
	}

	session, err := sessionService.CreateNextWeekSession(ctx)
	if err != nil {
		slog.Error("next week session creation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Session janitor run completed", "sessionId", session.ID, "weekStart", session.WeekStartDate)
}
