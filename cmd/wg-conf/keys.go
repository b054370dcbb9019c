package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/ernado/wg-conf/internal/keys"
)

func GenKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Generate private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := keys.RandomPrivateKey()
			defer k.Zero()
			_, err := fmt.Fprintln(cmd.OutOrStdout(), k)
			return err
		},
	}
}

func GenPSKCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genpsk",
		Short: "Generate preshared key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := keys.RandomPresharedKey()
			defer k.Zero()
			_, err := fmt.Fprintln(cmd.OutOrStdout(), k)
			return err
		},
	}
}

func PubKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Derive public key from private key read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.Wrap(err, "read private key")
			}
			k, err := keys.ParsePrivateKey(strings.TrimSpace(line))
			if err != nil {
				return errors.Wrap(err, "parse")
			}
			defer k.Zero()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), k.PublicKey())
			return err
		},
	}
}
