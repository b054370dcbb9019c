package config

import (
	"net/netip"
	"slices"

	"github.com/go-faster/errors"

	"github.com/ernado/wg-conf/internal/keys"
)

var (
	// ErrNoPrivateKeyProvided means that peer holds only public key.
	ErrNoPrivateKeyProvided = errors.New("no private key provided")
	// ErrNoAssignedIP means that none of peer allowed IPs is inside of
	// interface addresses.
	ErrNoAssignedIP = errors.New("no assigned ip")
)

var (
	defaultRouteV4 = netip.PrefixFrom(netip.IPv4Unspecified(), 0)
	defaultRouteV6 = netip.PrefixFrom(netip.IPv6Unspecified(), 0)
)

// DeriveOptions configure Peer.ToInterface.
type DeriveOptions struct {
	// DefaultGateway routes all traffic through the reference interface.
	DefaultGateway bool
	// PersistentKeepalive for the reference peer, zero is ignored.
	PersistentKeepalive uint16
}

// ToPeer exports interface as a peer.
//
// Keepalive and preshared key are not exported: they belong to a particular
// peer relationship.
func (i Interface) ToPeer() Peer {
	privateKey := i.PrivateKey
	return Peer{
		Endpoint:   i.Endpoint,
		AllowedIPs: slices.Clone(i.Address),
		Key:        &privateKey,
		Amnezia:    clonePtr(i.Amnezia),
	}
}

// contains reports whether inner network is fully inside of outer.
func contains(outer, inner netip.Prefix) bool {
	return outer.Bits() <= inner.Bits() && outer.Contains(inner.Addr())
}

// ToInterface derives configuration of the peer itself from the interface
// it is a peer of.
//
// Every allowed IP that is inside of some ref address gets the prefix
// length of the first such address, others are dropped.
func (p Peer) ToInterface(ref Interface, opts DeriveOptions) (Interface, error) {
	privateKey, ok := keys.AsPrivateKey(p.Key)
	if !ok {
		return Interface{}, ErrNoPrivateKeyProvided
	}

	var assigned []netip.Prefix
	for _, allowed := range p.AllowedIPs {
		for _, addr := range ref.Address {
			if !contains(addr, allowed) {
				continue
			}
			assigned = append(assigned, netip.PrefixFrom(allowed.Addr(), addr.Bits()))
			break
		}
	}
	if len(assigned) == 0 {
		return Interface{}, ErrNoAssignedIP
	}

	i := Interface{
		Address:    assigned,
		PrivateKey: privateKey,
		DNS:        slices.Clone(ref.DNS),
		Amnezia:    clonePtr(p.Amnezia),
		Peers:      []Peer{ref.ToPeer()},
	}

	if opts.DefaultGateway {
		var routes []netip.Prefix
		if slices.ContainsFunc(assigned, func(a netip.Prefix) bool { return a.Addr().Is4() }) {
			routes = append(routes, defaultRouteV4)
		}
		if slices.ContainsFunc(assigned, func(a netip.Prefix) bool { return a.Addr().Is6() }) {
			routes = append(routes, defaultRouteV6)
		}
		i.Peers[0].AllowedIPs = routes
	}
	if opts.PersistentKeepalive != 0 {
		i.Peers[0].PersistentKeepalive = opts.PersistentKeepalive
	}

	return i, nil
}
