package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/ernado/wg-conf/internal/config"
)

func clientNameCompletion(opts *Options) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := ReadConfig(opts.ConfigPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var completions []cobra.Completion
		for _, peer := range cfg.Peers {
			if peer.PrivateKey == nil {
				continue
			}
			completions = append(completions, peer.Name)
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// writeQR saves rendered configuration as QR code image.
func writeQR(path string, i config.Interface) error {
	qrc, err := qrcode.New(i.String())
	if err != nil {
		return errors.Wrap(err, "encode qr code")
	}
	w, err := standard.New(path)
	if err != nil {
		return errors.Wrap(err, "create image writer")
	}
	if err := qrc.Save(w); err != nil {
		return errors.Wrap(err, "save qr code")
	}
	return nil
}

func ClientCommand(opts *Options) *cobra.Command {
	var (
		derive config.DeriveOptions
		qrPath string
	)
	cmd := &cobra.Command{
		Use:               "client [name]",
		Short:             "Generate WireGuard client configuration",
		Long:              "Generate WireGuard client configuration file.",
		SilenceUsage:      true,
		ValidArgsFunction: clientNameCompletion(opts),
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientName := args[0]
			lg := newLogger(cmd.ErrOrStderr())

			cfg, err := ReadConfig(opts.ConfigPath)
			if err != nil {
				return errors.Wrap(err, "read configuration")
			}

			client, err := cfg.Client(clientName, derive)
			if err != nil {
				return err
			}
			defer client.Zero()

			if qrPath != "" {
				if err := writeQR(qrPath, client); err != nil {
					return errors.Wrap(err, "write qr code")
				}
				lg.Info("QR code saved", "client", clientName, "path", qrPath)
			}

			return writeInterface(cmd.OutOrStdout(), opts.Format, client)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&derive.DefaultGateway, "default-gateway", false, "route all traffic through the server")
	flags.Uint16Var(&derive.PersistentKeepalive, "keepalive", 0, "persistent keepalive interval in seconds")
	flags.StringVar(&qrPath, "qr", "", "save configuration as QR code image to file")

	return cmd
}
