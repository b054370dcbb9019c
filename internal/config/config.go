// Package config implements WireGuard interface and peer configuration.
package config

import (
	"net/netip"
	"slices"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/keys"
)

// UnsetAddress is the default Interface address, meaning "not configured".
var UnsetAddress = netip.PrefixFrom(netip.IPv4Unspecified(), 0)

// Peer is a [Peer] section.
type Peer struct {
	// Endpoint is host:port of the peer.
	Endpoint string
	// AllowedIPs are networks routed through the peer. By convention they
	// also include the peer's own addresses.
	AllowedIPs []netip.Prefix
	// PersistentKeepalive interval in seconds, zero is omitted.
	PersistentKeepalive uint16
	// Key is a private key if the peer identity is fully known, so
	// Interface can be derived from it, or a public key otherwise.
	// Builders store it by pointer, so Zero can erase it.
	Key          keys.Key
	PresharedKey *keys.PresharedKey
	Amnezia      *amnezia.Settings
}

// Interface is a complete configuration: the [Interface] section with peers.
type Interface struct {
	Address    []netip.Prefix  `yaml:"address"`
	ListenPort *uint16         `yaml:"listenPort,omitempty"`
	PrivateKey keys.PrivateKey `yaml:"privateKey"`
	DNS        []string        `yaml:"dns,omitempty"`
	// Endpoint is rendered as "# Name" comment and used as endpoint of
	// the peer exported by ToPeer.
	Endpoint string            `yaml:"endpoint,omitempty"`
	Table    *Table            `yaml:"table,omitempty"`
	MTU      *uint16           `yaml:"mtu,omitempty"`
	Amnezia  *amnezia.Settings `yaml:"amnezia,omitempty"`

	// Hooks are shell snippets passed to wg-quick verbatim.
	PreUp    []string `yaml:"preUp,omitempty"`
	PreDown  []string `yaml:"preDown,omitempty"`
	PostUp   []string `yaml:"postUp,omitempty"`
	PostDown []string `yaml:"postDown,omitempty"`

	Peers []Peer `yaml:"peers,omitempty"`
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneKey(k keys.Key) keys.Key {
	switch k := k.(type) {
	case *keys.PrivateKey:
		return clonePtr(k)
	case *keys.PublicKey:
		return clonePtr(k)
	default:
		return k
	}
}

// Clone returns deep copy of peer.
func (p Peer) Clone() Peer {
	p.Key = cloneKey(p.Key)
	p.AllowedIPs = slices.Clone(p.AllowedIPs)
	p.PresharedKey = clonePtr(p.PresharedKey)
	p.Amnezia = clonePtr(p.Amnezia)
	return p
}

// Clone returns deep copy of interface, including peers.
func (i Interface) Clone() Interface {
	i.Address = slices.Clone(i.Address)
	i.ListenPort = clonePtr(i.ListenPort)
	i.DNS = slices.Clone(i.DNS)
	i.Table = clonePtr(i.Table)
	i.MTU = clonePtr(i.MTU)
	i.Amnezia = clonePtr(i.Amnezia)
	i.PreUp = slices.Clone(i.PreUp)
	i.PreDown = slices.Clone(i.PreDown)
	i.PostUp = slices.Clone(i.PostUp)
	i.PostDown = slices.Clone(i.PostDown)
	if i.Peers != nil {
		peers := make([]Peer, len(i.Peers))
		for j, p := range i.Peers {
			peers[j] = p.Clone()
		}
		i.Peers = peers
	}
	return i
}

// Zero erases key material held by peer.
//
// Keys held by pointer are overwritten in place. A key held by value can't
// be reached, so it is only replaced with a zero key of the same kind.
func (p *Peer) Zero() {
	if !keys.Erase(p.Key) {
		switch p.Key.(type) {
		case keys.PrivateKey:
			p.Key = keys.PrivateKey{}
		case keys.PublicKey:
			p.Key = keys.PublicKey{}
		}
	}
	if p.PresharedKey != nil {
		p.PresharedKey.Zero()
	}
}

// Zero erases key material of interface and all its peers.
func (i *Interface) Zero() {
	i.PrivateKey.Zero()
	for j := range i.Peers {
		i.Peers[j].Zero()
	}
}
