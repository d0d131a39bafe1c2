package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vocespace/server/internal/api"
	"github.com/vocespace/server/internal/cache"
	"github.com/vocespace/server/internal/config"
	"github.com/vocespace/server/internal/domain"
	"github.com/vocespace/server/internal/platform"
	"github.com/vocespace/server/internal/store"
	"github.com/vocespace/server/internal/token"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vocespace",
		Short: "VoceSpace record and token service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "vocespace.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func getStore(cfg config.Config) (*store.Store, error) {
	// Ensure directory exists
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.New(cfg.DBPath)
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			issuer, err := token.New(cfg.Token.Secret)
			if err != nil {
				return err
			}

			var platformClient *platform.Client
			if cfg.Platform.BaseURL != "" {
				platformClient = platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.APIKey)
			}

			server := api.New(api.Options{
				Store:  s,
				Cache:  cache.New(),
				Issuer: issuer,
				Redirector: platform.Redirector{
					VoceSpaceHost: cfg.Redirect.VoceSpaceHost,
					MeetingHost:   cfg.Redirect.MeetingHost,
				},
				Platform: platformClient,
				Logger:   logger,
				Addr:     cfg.Addr,
				UserTTL:  time.Duration(cfg.Cache.UserTTLSeconds) * time.Second,
			})
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		id       string
		username string
		space    string
		room     string
		identity string
		preJoin  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a cross-domain access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			issuer, err := token.New(cfg.Token.Secret)
			if err != nil {
				return err
			}

			claims := token.Claims{
				ID:       id,
				Username: username,
				Space:    space,
				Room:     room,
				Identity: domain.Identity(identity),
				PreJoin:  preJoin,
			}
			if claims.Identity != "" && !claims.Identity.Valid() {
				return fmt.Errorf("unknown identity: %s", identity)
			}

			signed, err := issuer.Issue(claims)
			if err != nil {
				return err
			}

			fmt.Println(signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "user id")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&space, "space", "", "destination space (defaults to username)")
	cmd.Flags().StringVar(&room, "room", "", "destination room")
	cmd.Flags().StringVar(&identity, "identity", "", "identity role (defaults to participant)")
	cmd.Flags().BoolVar(&preJoin, "pre-join", false, "mark the token as pre-join")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}
