package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/rankedpick/cliparse"
	"github.com/danielhkuo/rankedpick/commands"
	"github.com/danielhkuo/rankedpick/db"
	"github.com/danielhkuo/rankedpick/router"
)

func main() {
	// Load .env if present; real environment variables win
	godotenv.Load()

	cfg, err := cliparse.Parse(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing arguments", "error", err)
		os.Exit(1)
	}

	switch cfg.Command {
	case "serve":
		err = runServe(cfg)
	case "count":
		err = commands.Count(cfg.Count, os.Stdout)
	case "gen":
		err = commands.Gen(cfg.Gen, os.Stdout)
	case "clean":
		err = commands.Clean(cfg.Clean)
	}
	if err != nil {
		slog.Error("Command failed", "command", cfg.Command, "error", err)
		os.Exit(1)
	}
}

func runServe(cfg cliparse.Config) error {
	dsn := cfg.DatabaseURL
	if cfg.DatabaseType == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	dbConn, err := sql.Open(cfg.DatabaseType, dsn)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		return err
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("Server closed")
	return nil
}

// sqliteDSN appends the pragmas a concurrent HTTP workload needs. Immediate
// transactions take the write lock up front, so an upsert never fails
// upgrading a read transaction mid-flight.
func sqliteDSN(url string) string {
	const params = "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	if strings.Contains(url, "?") {
		return url + "&" + params
	}
	return url + "?" + params
}
