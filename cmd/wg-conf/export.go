package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ernado/wg-conf/internal/config"
)

const lockName = ".wg-conf.lock"

// writeFile writes interface to dir/name.conf, readable only by owner.
func writeFile(dir, name, format string, i config.Interface) (string, error) {
	var buf bytes.Buffer
	if err := writeInterface(&buf, format, i); err != nil {
		return "", err
	}
	ext := ".conf"
	if format == formatYAML {
		ext = ".yaml"
	}
	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", errors.Wrap(err, "write file")
	}
	return path, nil
}

// Export writes server and every derivable client configuration into dir.
//
// Returns names of skipped peers.
func Export(dir, name, format string, cfg *Config, opts config.DeriveOptions) (skipped []string, err error) {
	if !validName(name) {
		return nil, errors.Errorf("invalid server name %q", name)
	}
	for _, p := range cfg.Peers {
		if p.Name == name {
			return nil, errors.Errorf("peer %q: name collides with server file name", p.Name)
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create directory")
	}

	lock := flock.New(filepath.Join(dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "lock directory")
	}
	if !ok {
		return nil, errors.Errorf("directory %q is locked by another process", dir)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = errors.Wrap(unlockErr, "unlock directory")
		}
	}()

	server := cfg.Interface()
	defer server.Zero()
	if _, err := writeFile(dir, name, format, server); err != nil {
		return nil, errors.Wrap(err, "server")
	}

	for _, p := range cfg.Peers {
		if p.PrivateKey == nil {
			skipped = append(skipped, p.Name)
			continue
		}
		client, err := cfg.Client(p.Name, opts)
		if err != nil {
			return skipped, err
		}
		_, err = writeFile(dir, p.Name, format, client)
		client.Zero()
		if err != nil {
			return skipped, errors.Wrapf(err, "client %q", p.Name)
		}
	}

	return skipped, nil
}

func ExportCommand(opts *Options) *cobra.Command {
	var (
		dir    string
		name   string
		derive config.DeriveOptions
	)
	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Export all configurations",
		Long:         "Write server and client configuration files into directory.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := newLogger(cmd.ErrOrStderr())

			cfg, err := ReadConfig(opts.ConfigPath)
			if err != nil {
				return errors.Wrap(err, "read configuration")
			}

			skipped, err := Export(dir, name, opts.Format, cfg, derive)
			if err != nil {
				return errors.Wrap(err, "export")
			}
			for _, peer := range skipped {
				lg.Warn("Skipped peer without private key", "peer", peer)
			}
			lg.Info("Exported",
				"dir", dir,
				"clients", len(cfg.Peers)-len(skipped),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dir, "dir", "d", ".", "output directory")
	flags.StringVar(&name, "name", "wg0", "server configuration file name without extension")
	flags.BoolVar(&derive.DefaultGateway, "default-gateway", false, "route all client traffic through the server")
	flags.Uint16Var(&derive.PersistentKeepalive, "keepalive", 0, "client persistent keepalive interval in seconds")

	return cmd
}
