package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-issueform/internal/config"
	"github.com/goliatone/go-issueform/internal/logging"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "issueform",
		Short:         "Create Jira issues from a form with generated descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newSubmitCommand(flags))
	root.AddCommand(newRenderCommand())
	root.AddCommand(newLintCommand())
	return root
}

// load resolves configuration and builds the logger. Flags win over the
// file and the environment.
func (f *globalFlags) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.LoadOptions{Path: f.configPath, EnvFile: f.envFile})
	if err != nil {
		return config.Config{}, nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
