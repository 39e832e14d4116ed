package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grassmap/pkg/config"
)

type rootOptions struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "grassmap",
		Short: "Chat-driven travel itinerary planner with a live map.",
		Long: `grassmap turns a conversation with an LLM into a list of places to visit
("grass points"), geocodes them, and keeps a map, check-ins and share cards in sync.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")

	cmd.AddCommand(newServeCmd(opts), newPlanCmd(opts))
	return cmd
}
