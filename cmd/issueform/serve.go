package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-issueform"
	"github.com/goliatone/go-issueform/pkg/server"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the issue form and the create_jira API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr != "" {
				cfg.Addr = addr
			}
			if cfg.Ollama.Host == "" {
				logger.Warn("OLLAMA_HOST is not set; create requests will be rejected")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := issueform.NewServer(ctx,
				server.WithLogger(logger),
				server.WithOllama(cfg.Ollama.Host, cfg.Ollama.Model),
			)
			if err != nil {
				return err
			}
			logger.Info("starting issueform",
				zap.String("addr", cfg.Addr),
				zap.String("ollama_model", cfg.Ollama.Model),
			)
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
