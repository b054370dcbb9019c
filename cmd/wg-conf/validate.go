package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/ernado/wg-conf/internal/config"
)

// Check validates amnezia settings and derivability of every peer with
// private key. Returns number of problems found, each reported to report.
func (c *Config) Check(report func(msg string, err error, args ...any)) int {
	var problems int
	fail := func(msg string, err error, args ...any) {
		problems++
		report(msg, err, args...)
	}

	if c.Amnezia != nil {
		if err := c.Amnezia.Validate(); err != nil {
			fail("Invalid server amnezia settings", err)
		}
	}
	for _, p := range c.Peers {
		if p.Amnezia != nil {
			if err := p.Amnezia.Validate(); err != nil {
				fail("Invalid peer amnezia settings", err, "peer", p.Name)
			}
		}
		if p.PrivateKey == nil {
			continue
		}
		client, err := c.Client(p.Name, config.DeriveOptions{})
		if err != nil {
			fail("Peer can't be derived", err, "peer", p.Name)
			continue
		}
		client.Zero()
	}
	return problems
}

func ValidateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Validate configuration",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := newLogger(cmd.ErrOrStderr())

			cfg, err := ReadConfig(opts.ConfigPath)
			if err != nil {
				return errors.Wrap(err, "read configuration")
			}

			problems := cfg.Check(func(msg string, err error, args ...any) {
				lg.Error(msg, append(args, "err", err)...)
			})
			if problems > 0 {
				return errors.Errorf("%d problems found", problems)
			}
			lg.Info("Configuration is valid", "peers", len(cfg.Peers))

			return nil
		},
	}

	return cmd
}
