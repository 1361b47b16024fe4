package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/personal-blog-api/internal/auth"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/repository"
	"github.com/personal-blog-api/internal/service"
)

var (
	ErrVersionRequired = errors.New("exactly one VERSION argument is required")
	ErrInactiveUser    = errors.New("user is deactivated")
)

// migrateCommand manages the schema with golang-migrate
func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, _ *cli.Command) error {
					e, err := setup()
					if err != nil {
						return err
					}
					defer e.db.Close()
					return e.db.RunMigrations(e.cfg.Server.MigrationsPath)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last migration",
				Action: func(ctx context.Context, _ *cli.Command) error {
					e, err := setup()
					if err != nil {
						return err
					}
					defer e.db.Close()
					return e.db.MigrateDown(e.cfg.Server.MigrationsPath)
				},
			},
			{
				Name:      "to",
				Usage:     "Migrate up or down to a specific version",
				ArgsUsage: "VERSION",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return ErrVersionRequired
					}
					version, err := strconv.ParseUint(c.Args().First(), 10, 32)
					if err != nil {
						return fmt.Errorf("invalid version %q: %w", c.Args().First(), err)
					}

					e, err := setup()
					if err != nil {
						return err
					}
					defer e.db.Close()
					return e.db.MigrateToVersion(e.cfg.Server.MigrationsPath, uint(version))
				},
			},
		},
	}
}

// userCommand administers accounts
func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "Role (admin or user)", Value: string(models.RoleUser)},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					e, err := setup()
					if err != nil {
						return err
					}
					defer e.db.Close()

					services := service.NewServices(service.Deps{
						Repos:  repository.New(e.db),
						Config: e.cfg,
						Log:    e.log,
					})

					user, err := services.User.Create(ctx, c.String("email"), c.String("name"), models.Role(c.String("role")))
					if err != nil {
						return err
					}

					fmt.Println(user.ID)
					return nil
				},
			},
		},
	}
}

// tokenCommand issues bearer tokens for existing users
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a signed bearer token for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user-id", Aliases: []string{"u"}, Usage: "ID of the user", Required: true},
			&cli.StringFlag{Name: "ttl", Usage: "Token lifetime, defaults to JWT_TTL"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.db.Close()

			ttl := e.cfg.Auth.TokenTTL
			if raw := c.String("ttl"); raw != "" {
				if ttl, err = time.ParseDuration(raw); err != nil {
					return fmt.Errorf("invalid ttl %q: %w", raw, err)
				}
			}

			services := service.NewServices(service.Deps{
				Repos:  repository.New(e.db),
				Config: e.cfg,
				Log:    e.log,
			})

			user, err := services.User.GetByID(ctx, c.String("user-id"))
			if err != nil {
				return err
			}
			if !user.Active {
				return ErrInactiveUser
			}

			token, err := auth.IssueToken(e.cfg.Auth.JWTSecret, user.ID, user.Role, ttl)
			if err != nil {
				return err
			}

			e.log.Info().Str("user_id", user.ID).Dur("ttl", ttl).Msg("Token issued")
			fmt.Println(token)
			return nil
		},
	}
}
