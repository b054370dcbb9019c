package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

func ServerCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Generate WireGuard server configuration",
		Long:         "Generate WireGuard server configuration file with all peers.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ReadConfig(opts.ConfigPath)
			if err != nil {
				return errors.Wrap(err, "read configuration")
			}

			return writeInterface(cmd.OutOrStdout(), opts.Format, cfg.Interface())
		},
	}

	return cmd
}
