// netopsctl manages station accounts: the administrative lifecycle the
// ingest API deliberately does not expose.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"netops/internal/config"
	"netops/internal/models"
	"netops/internal/repository"
	"netops/internal/service"
	"netops/pkg/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "netopsctl",
		Short:        "Station account management for the NetOps ingest server",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(addStationCmd(), resetStationPasswordCmd(), deleteStationCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type adminEnv struct {
	stations repository.StationRepository
	auth     service.AuthService
}

func connect() (*adminEnv, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	stations := repository.NewStationRepository(db)
	return &adminEnv{
		stations: stations,
		auth:     service.NewAuthService(stations, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}, nil
}

func addStationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-station <name> <password>",
		Short: "Create a station account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			name, password := args[0], args[1]
			if _, err := env.stations.GetByName(ctx, name); err == nil {
				return fmt.Errorf("station %q already exists", repository.NormalizeStationName(name))
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			hash, err := env.auth.HashPassword(password)
			if err != nil {
				return err
			}
			station := &models.Station{
				Name:         name,
				PasswordHash: hash,
				TokenSalt:    env.auth.NewTokenSalt(),
			}
			if err := env.stations.Create(ctx, station); err != nil {
				return err
			}
			fmt.Printf("Added station: %s\n", station.Name)
			return nil
		},
	}
}

func resetStationPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-station-password <name> <password>",
		Short: "Reset a station's password and revoke its outstanding tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			station, err := env.stations.GetByName(ctx, args[0])
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("station %q not found", repository.NormalizeStationName(args[0]))
				}
				return err
			}

			hash, err := env.auth.HashPassword(args[1])
			if err != nil {
				return err
			}
			station.PasswordHash = hash
			station.TokenSalt = env.auth.NewTokenSalt() // invalidate existing tokens
			if err := env.stations.Save(ctx, station); err != nil {
				return err
			}
			fmt.Printf("Password reset for station: %s\n", station.Name)
			return nil
		},
	}
}

func deleteStationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-station <name>",
		Short: "Delete a station and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := connect()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			station, err := env.stations.GetByName(ctx, args[0])
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("station %q not found", repository.NormalizeStationName(args[0]))
				}
				return err
			}
			if err := env.stations.Delete(ctx, station.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted station: %s\n", station.Name)
			return nil
		},
	}
}
