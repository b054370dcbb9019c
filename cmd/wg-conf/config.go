package main

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/config"
	"github.com/ernado/wg-conf/internal/keys"
)

// Peer is a named client of the server.
type Peer struct {
	Name string `yaml:"name" toml:"name"`
	// Exactly one of PrivateKey and PublicKey must be set. Client config
	// can be generated only for peers with private key.
	PrivateKey   *keys.PrivateKey   `yaml:"privateKey,omitempty" toml:"privateKey,omitempty"`
	PublicKey    *keys.PublicKey    `yaml:"publicKey,omitempty" toml:"publicKey,omitempty"`
	PresharedKey *keys.PresharedKey `yaml:"presharedKey,omitempty" toml:"presharedKey,omitempty"`
	Address      []netip.Prefix     `yaml:"address" toml:"address"`
	Endpoint     string             `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Keepalive    uint16             `yaml:"keepalive,omitempty" toml:"keepalive,omitempty"`
	Amnezia      *amnezia.Settings  `yaml:"amnezia,omitempty" toml:"amnezia,omitempty"`
}

// Config is the server document.
type Config struct {
	// Endpoint is IP:Port or Hostname:Port clients connect to.
	Endpoint     string            `yaml:"endpoint" toml:"endpoint"`
	PrivateKey   keys.PrivateKey   `yaml:"privateKey" toml:"privateKey"`
	Port         uint16            `yaml:"port" toml:"port"`
	Address      []netip.Prefix    `yaml:"address" toml:"address"`
	DNS          []string          `yaml:"dns,omitempty" toml:"dns,omitempty"`
	MTU          uint16            `yaml:"mtu,omitempty" toml:"mtu,omitempty"`
	Table        *config.Table     `yaml:"table,omitempty" toml:"table,omitempty"`
	NATInterface string            `yaml:"natInterface,omitempty" toml:"natInterface,omitempty"`
	Amnezia      *amnezia.Settings `yaml:"amnezia,omitempty" toml:"amnezia,omitempty"`
	Peers        []Peer            `yaml:"peers,omitempty" toml:"peers,omitempty"`
}

// ReadConfig reads document from path, decoding TOML if path has .toml
// extension and YAML otherwise.
func ReadConfig(path string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode toml")
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate")
	}
	return &cfg, nil
}

// validName reports whether name is usable as a file name inside of the
// export directory.
func validName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// Validate checks document structure.
//
// Amnezia settings and peer addresses are checked by the validate command.
func (c *Config) Validate() error {
	if len(c.Address) == 0 {
		return errors.New("no address")
	}
	names := make(map[string]struct{}, len(c.Peers))
	for i, p := range c.Peers {
		if p.Name == "" {
			return errors.Errorf("peer %d: no name", i)
		}
		if !validName(p.Name) {
			return errors.Errorf("peer %q: name must not contain path separators or be . or ..", p.Name)
		}
		if _, ok := names[p.Name]; ok {
			return errors.Errorf("peer %q: duplicate name", p.Name)
		}
		names[p.Name] = struct{}{}
		if (p.PrivateKey == nil) == (p.PublicKey == nil) {
			return errors.Errorf("peer %q: exactly one of privateKey or publicKey must be set", p.Name)
		}
	}
	return nil
}

// Peer finds peer by name.
func (c *Config) Peer(name string) (Peer, bool) {
	for _, p := range c.Peers {
		if p.Name == name {
			return p, true
		}
	}
	return Peer{}, false
}

// key returns copy of peer key, so erasing it leaves document intact.
func (p Peer) key() keys.Key {
	if p.PrivateKey != nil {
		k := *p.PrivateKey
		return &k
	}
	k := *p.PublicKey
	return &k
}

// Config converts document peer to server-side peer.
func (p Peer) Config() config.Peer {
	b := config.NewPeerBuilder().
		Endpoint(p.Endpoint).
		AllowedIPs(p.Address...).
		PersistentKeepalive(p.Keepalive).
		Key(p.key())
	if p.PresharedKey != nil {
		b.PresharedKey(*p.PresharedKey)
	}
	if p.Amnezia != nil {
		b.Amnezia(*p.Amnezia)
	}
	return b.Build()
}

// natRules returns iptables rules that masquerade tunnel traffic leaving
// through the out interface.
func natRules(action, out string) []string {
	return []string{
		fmt.Sprintf("iptables -%s FORWARD -i %%i -j ACCEPT", action),
		fmt.Sprintf("iptables -%s FORWARD -o %%i -j ACCEPT", action),
		fmt.Sprintf("iptables -t nat -%s POSTROUTING -o %s -j MASQUERADE", action, out),
	}
}

// Interface converts document to server interface with all peers.
func (c *Config) Interface() config.Interface {
	b := config.NewInterfaceBuilder().
		Address(c.Address...).
		PrivateKey(c.PrivateKey).
		DNS(c.DNS...).
		Endpoint(c.Endpoint)
	if c.Port != 0 {
		b.ListenPort(c.Port)
	}
	if c.MTU != 0 {
		b.MTU(c.MTU)
	}
	if c.Table != nil {
		b.Table(*c.Table)
	}
	if c.Amnezia != nil {
		b.Amnezia(*c.Amnezia)
	}
	if c.NATInterface != "" {
		b.PostUp(natRules("A", c.NATInterface)...)
		b.PostDown(natRules("D", c.NATInterface)...)
	}
	for _, p := range c.Peers {
		b.AddPeer(p.Config())
	}
	return b.Build()
}

// Client derives configuration of the named peer.
func (c *Config) Client(name string, opts config.DeriveOptions) (config.Interface, error) {
	p, ok := c.Peer(name)
	if !ok {
		return config.Interface{}, errors.Errorf("client with name %q not found", name)
	}
	server := c.Interface()
	defer server.Zero()
	peer := p.Config()
	defer peer.Zero()
	i, err := peer.ToInterface(server, opts)
	if err != nil {
		return config.Interface{}, errors.Wrapf(err, "derive %q", name)
	}
	// Server-side preshared key is shared with the client.
	if p.PresharedKey != nil {
		psk := *p.PresharedKey
		i.Peers[0].PresharedKey = &psk
	}
	// Header obfuscation must match the server, so peers without own
	// settings inherit server ones.
	if i.Amnezia == nil && c.Amnezia != nil {
		s := *c.Amnezia
		i.Amnezia = &s
	}
	return i, nil
}

func ConfigCommand() *cobra.Command {
	var (
		withAmnezia bool
		asTOML      bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print sample configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			peerPrivateKey := keys.RandomPrivateKey()
			psk := keys.RandomPresharedKey()

			peer := Peer{
				Name:         "client",
				PrivateKey:   &peerPrivateKey,
				PresharedKey: &psk,
				Address:      []netip.Prefix{netip.MustParsePrefix("10.5.5.2/32")},
			}

			cfg := Config{
				Endpoint:     "vpn.example.com:51820",
				PrivateKey:   keys.RandomPrivateKey(),
				Port:         51820,
				Address:      []netip.Prefix{netip.MustParsePrefix("10.5.5.1/24")},
				DNS:          []string{"1.1.1.1"},
				NATInterface: "eth0",
				Peers:        []Peer{peer},
			}
			if withAmnezia {
				s := amnezia.Random()
				cfg.Amnezia = &s
			}

			if asTOML {
				return encodeTOML(cmd, cfg)
			}
			e := yaml.NewEncoder(cmd.OutOrStdout())
			e.SetIndent(2)
			if err := e.Encode(cfg); err != nil {
				return errors.Wrap(err, "encode config")
			}

			return e.Close()
		},
	}
	cmd.Flags().BoolVar(&withAmnezia, "amnezia", false, "add random AmneziaWG obfuscation settings")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print TOML instead of YAML")

	return cmd
}

func encodeTOML(cmd *cobra.Command, cfg Config) error {
	if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return nil
}
