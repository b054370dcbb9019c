package config

import (
	"net/netip"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/keys"
)

// peerYAML is Peer with the key union split into exclusive fields.
type peerYAML struct {
	Endpoint            string             `yaml:"endpoint,omitempty"`
	AllowedIPs          []netip.Prefix     `yaml:"allowedIPs"`
	PersistentKeepalive uint16             `yaml:"persistentKeepalive,omitempty"`
	PrivateKey          *keys.PrivateKey   `yaml:"privateKey,omitempty"`
	PublicKey           *keys.PublicKey    `yaml:"publicKey,omitempty"`
	PresharedKey        *keys.PresharedKey `yaml:"presharedKey,omitempty"`
	Amnezia             *amnezia.Settings  `yaml:"amnezia,omitempty"`
}

func (p Peer) MarshalYAML() (interface{}, error) {
	v := peerYAML{
		Endpoint:            p.Endpoint,
		AllowedIPs:          p.AllowedIPs,
		PersistentKeepalive: p.PersistentKeepalive,
		PresharedKey:        p.PresharedKey,
		Amnezia:             p.Amnezia,
	}
	switch k := p.Key.(type) {
	case keys.PrivateKey:
		v.PrivateKey = &k
	case *keys.PrivateKey:
		v.PrivateKey = k
	case keys.PublicKey:
		v.PublicKey = &k
	case *keys.PublicKey:
		v.PublicKey = k
	default:
		return nil, errors.New("peer has no key")
	}
	return v, nil
}

func (p *Peer) UnmarshalYAML(value *yaml.Node) error {
	var v peerYAML
	if err := value.Decode(&v); err != nil {
		return errors.Wrap(err, "decode peer")
	}
	switch {
	case v.PrivateKey != nil && v.PublicKey != nil:
		return errors.New("peer must have either privateKey or publicKey, not both")
	case v.PrivateKey != nil:
		p.Key = v.PrivateKey
	case v.PublicKey != nil:
		p.Key = v.PublicKey
	default:
		return errors.New("peer must have privateKey or publicKey")
	}
	p.Endpoint = v.Endpoint
	p.AllowedIPs = v.AllowedIPs
	p.PersistentKeepalive = v.PersistentKeepalive
	p.PresharedKey = v.PresharedKey
	p.Amnezia = v.Amnezia
	return nil
}
