package main

import (
	"io"
	"log/slog"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ernado/wg-conf/internal/config"
	"github.com/ernado/wg-conf/internal/keys"
)

const (
	formatConf = "conf"
	formatYAML = "yaml"
)

// Options are persistent flags shared by subcommands.
type Options struct {
	ConfigPath string
	Format     string
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			// Drop time key, output is interactive.
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		}),
	)
}

// publicPeers returns copy of interface where every peer is identified
// only by its public key.
func publicPeers(i config.Interface) config.Interface {
	c := i.Clone()
	for j := range c.Peers {
		p := &c.Peers[j]
		if p.Key == nil {
			continue
		}
		pub := p.Key.PublicKey()
		keys.Erase(p.Key)
		p.Key = &pub
	}
	return c
}

// writeInterface writes interface in selected format.
//
// Peer private keys never leave the process: the conf format renders
// public keys only, and yaml output is written from publicPeers.
func writeInterface(w io.Writer, format string, i config.Interface) error {
	switch format {
	case formatConf:
		if err := i.Render(w); err != nil {
			return errors.Wrap(err, "render config")
		}
		return nil
	case formatYAML:
		pub := publicPeers(i)
		defer pub.Zero()

		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(pub); err != nil {
			return errors.Wrap(err, "encode config")
		}
		return e.Close()
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func Root() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "wg-conf",
		Short: "WireGuard configuration generator.",
		Long:  "Generator of WireGuard server and client configuration files.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Format {
			case formatConf, formatYAML:
				return nil
			default:
				return errors.Errorf("unknown format %q, expected %s or %s", opts.Format, formatConf, formatYAML)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "wg-conf.yaml", "path to configuration file, .toml extension selects TOML")
	flags.StringVarP(&opts.Format, "format", "f", formatConf, "output format: conf or yaml")

	cmd.AddCommand(
		ConfigCommand(),
		ServerCommand(opts),
		ClientCommand(opts),
		ExportCommand(opts),
		ValidateCommand(opts),
		GenKeyCommand(),
		GenPSKCommand(),
		PubKeyCommand(),
	)

	return cmd
}
