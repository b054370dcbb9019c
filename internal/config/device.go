package config

import (
	"net"
	"net/netip"
	"time"

	"github.com/go-faster/errors"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

func ipNet(p netip.Prefix) net.IPNet {
	p = p.Masked()
	return net.IPNet{
		IP:   p.Addr().AsSlice(),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}

// DeviceConfig converts peer to device configuration.
//
// Endpoint must be an ip:port literal, host names are not resolved.
func (p Peer) DeviceConfig() (wgtypes.PeerConfig, error) {
	if p.Key == nil {
		return wgtypes.PeerConfig{}, errors.New("peer has no key")
	}
	cfg := wgtypes.PeerConfig{
		PublicKey:         wgtypes.Key(p.Key.PublicKey()),
		ReplaceAllowedIPs: true,
	}
	if p.PresharedKey != nil {
		k := wgtypes.Key(*p.PresharedKey)
		cfg.PresharedKey = &k
	}
	if p.Endpoint != "" {
		addr, err := netip.ParseAddrPort(p.Endpoint)
		if err != nil {
			return wgtypes.PeerConfig{}, errors.Wrapf(err, "parse endpoint %q", p.Endpoint)
		}
		cfg.Endpoint = net.UDPAddrFromAddrPort(addr)
	}
	if p.PersistentKeepalive != 0 {
		d := time.Duration(p.PersistentKeepalive) * time.Second
		cfg.PersistentKeepaliveInterval = &d
	}
	for _, prefix := range p.AllowedIPs {
		cfg.AllowedIPs = append(cfg.AllowedIPs, ipNet(prefix))
	}
	return cfg, nil
}

// DeviceConfig converts interface to configuration that can be applied to
// a device with wgctrl. Peers are replaced.
//
// Addresses, DNS, hooks and other wg-quick settings have no device
// counterpart and are ignored.
func (i Interface) DeviceConfig() (wgtypes.Config, error) {
	privateKey := wgtypes.Key(i.PrivateKey)
	cfg := wgtypes.Config{
		PrivateKey:   &privateKey,
		ReplacePeers: true,
		Peers:        make([]wgtypes.PeerConfig, 0, len(i.Peers)),
	}
	if i.ListenPort != nil {
		port := int(*i.ListenPort)
		cfg.ListenPort = &port
	}
	for j, p := range i.Peers {
		peer, err := p.DeviceConfig()
		if err != nil {
			return wgtypes.Config{}, errors.Wrapf(err, "peer %d", j)
		}
		cfg.Peers = append(cfg.Peers, peer)
	}
	return cfg, nil
}
