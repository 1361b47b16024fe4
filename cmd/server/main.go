package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/personal-blog-api/internal/config"
	"github.com/personal-blog-api/internal/database"
	"github.com/personal-blog-api/pkg/logger"
)

func main() {
	app := &cli.Command{
		Name:  "blog",
		Usage: "Personal blog API server and maintenance tool",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skip-migrations",
				Usage: "Do not apply pending migrations before serving",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "skip-migrations", Usage: "Do not apply pending migrations before serving"}},
				Action: serve,
			},
			migrateCommand(),
			userCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds what every command needs
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *database.DB
}

// setup loads configuration, builds the logger and connects to the database
func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &env{cfg: cfg, log: log, db: db}, nil
}
