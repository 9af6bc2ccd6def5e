package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todograph/internal/seed"
	"github.com/mesh-intelligence/todograph/internal/server"
	"github.com/mesh-intelligence/todograph/internal/telemetry"
	"github.com/mesh-intelligence/todograph/pkg/store"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

type serveFlags struct {
	listen  string
	backend string
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var sf serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		Long: "Start the HTTP server. The PORT environment variable overrides the port of\n" +
			"the configured listen address; an explicit --listen wins over both.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := commandConfig(flags)
			if err != nil {
				return err
			}
			cfg.Listen = listenAddr(cfg.Listen, sf.listen, cmd.Flags().Changed("listen"))
			if cmd.Flags().Changed("backend") {
				cfg.Backend = sf.backend
			}
			if err := cfg.Validate(); err != nil {
				return userError("invalid config: %w", err)
			}

			logWriter := telemetry.OpenLogWriter(cfg.LogFile)
			defer logWriter.Close()
			logger := telemetry.NewLogger(logWriter)

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Detach()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.New(cfg, s, logger).Start(ctx); err != nil {
				return sysError("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sf.listen, "listen", types.DefaultListen, "address to listen on")
	cmd.Flags().StringVar(&sf.backend, "backend", types.BackendMemory, "store backend (memory or sqlite)")
	return cmd
}

// listenAddr picks the serve address: an explicit --listen as given,
// otherwise the configured address with the PORT override applied.
func listenAddr(configured, flag string, flagSet bool) string {
	if flagSet {
		return flag
	}
	return server.ListenAddr(configured)
}

// commandConfig resolves the config directory and loads config.yaml from it.
func commandConfig(flags *rootFlags) (types.Config, error) {
	configDir, err := resolveConfigDir(flags)
	if err != nil {
		return types.Config{}, err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, userError("load config: %w", err)
	}
	return cfg, nil
}

// openStore attaches the configured backend and seeds it when enabled.
func openStore(cfg types.Config) (types.Store, error) {
	s, err := store.Open(cfg)
	if err != nil {
		return nil, sysError("open store: %w", err)
	}
	if cfg.Seed {
		if _, err := seed.Apply(s, cfg.SeedFile); err != nil {
			s.Detach()
			return nil, userError("seed store: %w", err)
		}
	}
	return s, nil
}
