package main

import (
	"fmt"
	"os"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/config"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once the root pre-run has loaded it.
type app struct {
	projectRoot string

	conf  *config.Config
	v     *viper.Viper
	log   *zap.Logger
	level zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stopaddiction",
		Short: "Anonymous school survey on addiction prevention",
		Long: `stopaddiction serves the anonymous StopAddiction questionnaire and lets
staff review or clear the collected responses.

Configuration is read from <root>/config/config.yaml and STOPADDICTION_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, v, err := config.Load(a.projectRoot)
			if err != nil {
				return err
			}
			log, level, err := logging.Init(conf.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.conf, a.v, a.log, a.level = conf, v, log, level
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.projectRoot, "root", ".", "project root holding config/ and assets/")

	root.AddCommand(newServeCmd(a), newResponsesCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
