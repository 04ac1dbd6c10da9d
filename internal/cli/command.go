package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal"
	"codeberg.org/snonux/shabda/internal/app"
	"codeberg.org/snonux/shabda/internal/config"
)

// runtime carries what PersistentPreRunE prepared for a subcommand
type runtime struct {
	flags  *Flags
	config *config.Config
	logger *zap.Logger
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rt := &runtime{flags: flags}

	rootCmd := &cobra.Command{
		Use:   "shabda",
		Short: "English/Odia vocabulary generator",
		Long: `shabda generates English/Odia vocabulary with a language model.

It asks the model for words or phrases, translates and romanizes them,
repairs malformed model output, and keeps the results in a per-user
session that can be saved, served over HTTP and exported to Anki.

Examples:
  shabda serve                          # Run the HTTP API
  shabda generate --type phrases        # Generate Odia phrases
  shabda translate water book           # Translate given English words
  shabda translate --batch words.txt    # Translate words from a file
  shabda export --notes -o odia.apkg    # Export the session to Anki`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newServeCommand(rt),
		newGenerateCommand(rt),
		newTranslateCommand(rt),
		newSessionsCommand(rt),
		newExportCommand(rt),
		newListModelsCommand(rt),
		newArchiveCommand(rt),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.shabda.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVarP(&flags.User, "user", "u", "", "session user (default \"default\")")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
}

// InitConfig initializes viper configuration and decodes it
func InitConfig(cfgFile string) (*config.Config, error) {
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
	return config.Load(viper.GetViper())
}

func (rt *runtime) init(cmd *cobra.Command) error {
	cfg, err := InitConfig(rt.flags.CfgFile)
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	rt.config = cfg
	rt.logger = logger
	return nil
}

// app builds the services for one command
func (rt *runtime) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, rt.config, rt.logger)
}
