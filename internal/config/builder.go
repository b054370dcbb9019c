package config

import (
	"net/netip"
	"slices"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/keys"
)

// InterfaceBuilder accumulates Interface fields.
//
// Build never fails: unset fields get defaults and no validation is done.
type InterfaceBuilder struct {
	address    []netip.Prefix
	listenPort *uint16
	privateKey *keys.PrivateKey
	dns        []string
	endpoint   string
	table      *Table
	mtu        *uint16
	amnezia    *amnezia.Settings
	preUp      []string
	preDown    []string
	postUp     []string
	postDown   []string
	peers      []Peer
}

func NewInterfaceBuilder() *InterfaceBuilder {
	return &InterfaceBuilder{}
}

// Address replaces addresses.
func (b *InterfaceBuilder) Address(prefixes ...netip.Prefix) *InterfaceBuilder {
	b.address = slices.Clone(prefixes)
	return b
}

// AddAddress adds network to addresses.
func (b *InterfaceBuilder) AddAddress(prefix netip.Prefix) *InterfaceBuilder {
	b.address = append(b.address, prefix)
	return b
}

// AddHost adds single address as /32 or /128 network.
func (b *InterfaceBuilder) AddHost(addr netip.Addr) *InterfaceBuilder {
	return b.AddAddress(netip.PrefixFrom(addr, addr.BitLen()))
}

func (b *InterfaceBuilder) ListenPort(port uint16) *InterfaceBuilder {
	b.listenPort = &port
	return b
}

func (b *InterfaceBuilder) PrivateKey(k keys.PrivateKey) *InterfaceBuilder {
	b.privateKey = &k
	return b
}

// DNS replaces DNS servers.
func (b *InterfaceBuilder) DNS(servers ...string) *InterfaceBuilder {
	b.dns = slices.Clone(servers)
	return b
}

func (b *InterfaceBuilder) AddDNS(server string) *InterfaceBuilder {
	b.dns = append(b.dns, server)
	return b
}

func (b *InterfaceBuilder) Endpoint(endpoint string) *InterfaceBuilder {
	b.endpoint = endpoint
	return b
}

func (b *InterfaceBuilder) Table(t Table) *InterfaceBuilder {
	b.table = &t
	return b
}

func (b *InterfaceBuilder) MTU(mtu uint16) *InterfaceBuilder {
	b.mtu = &mtu
	return b
}

func (b *InterfaceBuilder) Amnezia(s amnezia.Settings) *InterfaceBuilder {
	b.amnezia = &s
	return b
}

func (b *InterfaceBuilder) PreUp(snippets ...string) *InterfaceBuilder {
	b.preUp = slices.Clone(snippets)
	return b
}

func (b *InterfaceBuilder) AddPreUp(snippet string) *InterfaceBuilder {
	b.preUp = append(b.preUp, snippet)
	return b
}

func (b *InterfaceBuilder) PreDown(snippets ...string) *InterfaceBuilder {
	b.preDown = slices.Clone(snippets)
	return b
}

func (b *InterfaceBuilder) AddPreDown(snippet string) *InterfaceBuilder {
	b.preDown = append(b.preDown, snippet)
	return b
}

func (b *InterfaceBuilder) PostUp(snippets ...string) *InterfaceBuilder {
	b.postUp = slices.Clone(snippets)
	return b
}

func (b *InterfaceBuilder) AddPostUp(snippet string) *InterfaceBuilder {
	b.postUp = append(b.postUp, snippet)
	return b
}

func (b *InterfaceBuilder) PostDown(snippets ...string) *InterfaceBuilder {
	b.postDown = slices.Clone(snippets)
	return b
}

func (b *InterfaceBuilder) AddPostDown(snippet string) *InterfaceBuilder {
	b.postDown = append(b.postDown, snippet)
	return b
}

// Peers replaces peers.
func (b *InterfaceBuilder) Peers(peers ...Peer) *InterfaceBuilder {
	b.peers = slices.Clone(peers)
	return b
}

func (b *InterfaceBuilder) AddPeer(peer Peer) *InterfaceBuilder {
	b.peers = append(b.peers, peer)
	return b
}

// Build creates Interface.
//
// Private key defaults to a random one and address to UnsetAddress.
func (b *InterfaceBuilder) Build() Interface {
	i := Interface{
		Address:    slices.Clone(b.address),
		ListenPort: clonePtr(b.listenPort),
		DNS:        slices.Clone(b.dns),
		Endpoint:   b.endpoint,
		Table:      clonePtr(b.table),
		MTU:        clonePtr(b.mtu),
		Amnezia:    clonePtr(b.amnezia),
		PreUp:      slices.Clone(b.preUp),
		PreDown:    slices.Clone(b.preDown),
		PostUp:     slices.Clone(b.postUp),
		PostDown:   slices.Clone(b.postDown),
	}
	if len(i.Address) == 0 {
		i.Address = []netip.Prefix{UnsetAddress}
	}
	if b.privateKey != nil {
		i.PrivateKey = *b.privateKey
	} else {
		i.PrivateKey = keys.RandomPrivateKey()
	}
	for _, p := range b.peers {
		i.Peers = append(i.Peers, p.Clone())
	}
	return i
}

// PeerBuilder accumulates Peer fields.
type PeerBuilder struct {
	endpoint            string
	allowedIPs          []netip.Prefix
	persistentKeepalive uint16
	key                 keys.Key
	presharedKey        *keys.PresharedKey
	amnezia             *amnezia.Settings
}

func NewPeerBuilder() *PeerBuilder {
	return &PeerBuilder{}
}

func (b *PeerBuilder) Endpoint(endpoint string) *PeerBuilder {
	b.endpoint = endpoint
	return b
}

// AllowedIPs replaces allowed IPs.
func (b *PeerBuilder) AllowedIPs(prefixes ...netip.Prefix) *PeerBuilder {
	b.allowedIPs = slices.Clone(prefixes)
	return b
}

func (b *PeerBuilder) AddAllowedIP(prefix netip.Prefix) *PeerBuilder {
	b.allowedIPs = append(b.allowedIPs, prefix)
	return b
}

func (b *PeerBuilder) PersistentKeepalive(seconds uint16) *PeerBuilder {
	b.persistentKeepalive = seconds
	return b
}

// Key sets either private or public key.
func (b *PeerBuilder) Key(k keys.Key) *PeerBuilder {
	b.key = k
	return b
}

// PrivateKey sets private key, so Interface can be derived from peer.
func (b *PeerBuilder) PrivateKey(k keys.PrivateKey) *PeerBuilder {
	return b.Key(&k)
}

// PublicKey sets public key. Interface can't be derived from such peer.
func (b *PeerBuilder) PublicKey(k keys.PublicKey) *PeerBuilder {
	return b.Key(&k)
}

func (b *PeerBuilder) PresharedKey(k keys.PresharedKey) *PeerBuilder {
	b.presharedKey = &k
	return b
}

func (b *PeerBuilder) Amnezia(s amnezia.Settings) *PeerBuilder {
	b.amnezia = &s
	return b
}

// Build creates Peer, generating random private key if no key is set.
func (b *PeerBuilder) Build() Peer {
	p := Peer{
		Endpoint:            b.endpoint,
		AllowedIPs:          slices.Clone(b.allowedIPs),
		PersistentKeepalive: b.persistentKeepalive,
		Key:                 cloneKey(b.key),
		PresharedKey:        clonePtr(b.presharedKey),
		Amnezia:             clonePtr(b.amnezia),
	}
	if p.Key == nil {
		k := keys.RandomPrivateKey()
		p.Key = &k
	}
	return p
}
