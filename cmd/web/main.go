package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/server"
	"github.com/ft-tools/forest-atlas/pkg/services/config"
	"github.com/ft-tools/forest-atlas/pkg/store/session"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Forest Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (optional, defaults apply without one)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store := session.NewStore(cfg.Server.SessionTTL())
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	store.StartJanitor(ctx, time.Minute)

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Dur("session_ttl", cfg.Server.SessionTTL()).
		Msg("configuration loaded")

	webAPI := server.NewWebAPI(logger, server.Dependencies{
		Store: store,
		Cfg:   cfg,
	})

	return webAPI.Start()
}
