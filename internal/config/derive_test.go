package config

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/keys"
)

func TestToPeer(t *testing.T) {
	server := testServer(t)
	s := amnezia.Random()
	server.Amnezia = &s

	p := server.ToPeer()
	require.Equal(t, "vpn.example.com:51820", p.Endpoint)
	require.Equal(t, server.Address, p.AllowedIPs)
	serverKey := server.PrivateKey
	require.Equal(t, keys.Key(&serverKey), p.Key)
	require.Equal(t, serverPublicKey, p.Key.PublicKey().String())
	require.Zero(t, p.PersistentKeepalive)
	require.Nil(t, p.PresharedKey)
	require.Equal(t, server.Amnezia, p.Amnezia)

	// No aliasing.
	p.AllowedIPs[0] = netip.MustParsePrefix("192.168.0.1/32")
	p.Amnezia.Jc = 100
	require.Equal(t, "10.0.0.1/24", server.Address[0].String())
	require.NotEqual(t, uint16(100), server.Amnezia.Jc)
}

func TestToInterface(t *testing.T) {
	server := testServer(t)

	client, err := server.Peers[0].ToInterface(server, DeriveOptions{})
	require.NoError(t, err)

	require.Equal(t, prefixes("10.0.0.2/24"), client.Address)
	require.Equal(t, clientPrivateKey, client.PrivateKey.String())
	require.Equal(t, []string{"1.1.1.1"}, client.DNS)
	require.Nil(t, client.ListenPort)
	require.Empty(t, client.Endpoint)
	require.Nil(t, client.Table)
	require.Nil(t, client.MTU)
	require.Empty(t, client.PostUp)
	require.Empty(t, client.PostDown)
	require.Nil(t, client.Amnezia)

	require.Len(t, client.Peers, 1)
	require.Equal(t, server.ToPeer(), client.Peers[0])

	// Inverse: exported server peer carries the server public key.
	require.Equal(t, serverPublicKey, client.Peers[0].Key.PublicKey().String())
	require.Equal(t, clientPublicKey, client.PrivateKey.PublicKey().String())
	require.Equal(t, server.Peers[0].Key.PublicKey(), client.ToPeer().Key.PublicKey())
}

func TestToInterfaceInverse(t *testing.T) {
	inside := func(t *testing.T, outer, inner []netip.Prefix) {
		t.Helper()
		require.NotEmpty(t, inner)
		for _, a := range inner {
			require.True(t, slices.ContainsFunc(outer, func(o netip.Prefix) bool {
				return o.Contains(a.Addr())
			}), "%s is outside of %v", a, outer)
		}
	}

	server := testServer(t)
	for _, tt := range []struct {
		Name    string
		Peer    Peer
		Address []netip.Prefix
	}{
		{"IPv4", server.Peers[0], prefixes("10.0.0.1/24")},
		{
			"DualStack",
			NewPeerBuilder().
				AllowedIPs(prefixes("10.0.0.5/32", "fd00::5/128")...).
				PrivateKey(mustPrivateKey(t, client2PrivateKey)).
				Build(),
			prefixes("10.0.0.1/24", "fd00::1/64"),
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			client, err := tt.Peer.ToInterface(server, DeriveOptions{})
			require.NoError(t, err)

			// Server is recovered from the only peer of the client.
			back, err := client.Peers[0].ToInterface(client, DeriveOptions{})
			require.NoError(t, err)
			require.Equal(t, tt.Address, back.Address)
			inside(t, server.Address, back.Address)
			require.Equal(t, serverPrivateKey, back.PrivateKey.String())
			require.Equal(t, tt.Peer.Key.PublicKey(), back.Peers[0].Key.PublicKey())
		})
	}
}

func TestToInterfaceDualStack(t *testing.T) {
	server := testServer(t)
	peer := NewPeerBuilder().
		AllowedIPs(prefixes("10.0.0.5/32", "fd00::5/128", "192.168.1.0/24")...).
		PrivateKey(mustPrivateKey(t, client2PrivateKey)).
		Build()

	client, err := peer.ToInterface(server, DeriveOptions{})
	require.NoError(t, err)
	require.Equal(t, prefixes("10.0.0.5/24", "fd00::5/64"), client.Address)
}

func TestToInterfaceFirstMatch(t *testing.T) {
	ref := NewInterfaceBuilder().
		Address(prefixes("10.0.0.1/16", "10.0.0.1/24")...).
		Build()
	peer := NewPeerBuilder().
		AllowedIPs(prefixes("10.0.0.2/32")...).
		Build()

	i, err := peer.ToInterface(ref, DeriveOptions{})
	require.NoError(t, err)
	require.Equal(t, prefixes("10.0.0.2/16"), i.Address)
}

func TestToInterfaceErrors(t *testing.T) {
	server := testServer(t)

	t.Run("PublicKey", func(t *testing.T) {
		_, err := server.Peers[1].ToInterface(server, DeriveOptions{})
		require.ErrorIs(t, err, ErrNoPrivateKeyProvided)
	})
	t.Run("NoAssignedIP", func(t *testing.T) {
		ref := NewInterfaceBuilder().Address(prefixes("10.0.0.1/24")...).Build()
		peer := NewPeerBuilder().AllowedIPs(prefixes("1.3.3.7/32")...).Build()

		_, err := peer.ToInterface(ref, DeriveOptions{})
		require.ErrorIs(t, err, ErrNoAssignedIP)
	})
	t.Run("WiderThanReference", func(t *testing.T) {
		ref := NewInterfaceBuilder().Address(prefixes("10.0.0.1/24")...).Build()
		peer := NewPeerBuilder().AllowedIPs(prefixes("10.0.0.0/16")...).Build()

		_, err := peer.ToInterface(ref, DeriveOptions{})
		require.True(t, errors.Is(err, ErrNoAssignedIP))
	})
	t.Run("FamilyMismatch", func(t *testing.T) {
		ref := NewInterfaceBuilder().Address(prefixes("fd00::1/64")...).Build()
		peer := NewPeerBuilder().AllowedIPs(prefixes("10.0.0.2/32")...).Build()

		_, err := peer.ToInterface(ref, DeriveOptions{})
		require.ErrorIs(t, err, ErrNoAssignedIP)
	})
}

func TestToInterfaceOptions(t *testing.T) {
	server := testServer(t)
	v4 := NewPeerBuilder().AllowedIPs(prefixes("10.0.0.7/32")...).Build()
	v6 := NewPeerBuilder().AllowedIPs(prefixes("fd00::7/128")...).Build()
	both := NewPeerBuilder().AllowedIPs(prefixes("fd00::7/128", "10.0.0.7/32")...).Build()

	for _, tt := range []struct {
		Name   string
		Peer   Peer
		Routes []netip.Prefix
	}{
		{"IPv4", v4, prefixes("0.0.0.0/0")},
		{"IPv6", v6, prefixes("::/0")},
		{"Both", both, prefixes("0.0.0.0/0", "::/0")},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			i, err := tt.Peer.ToInterface(server, DeriveOptions{DefaultGateway: true})
			require.NoError(t, err)
			require.Equal(t, tt.Routes, i.Peers[0].AllowedIPs)
			require.Zero(t, i.Peers[0].PersistentKeepalive)

			// Reference is not modified.
			require.Equal(t, prefixes("10.0.0.1/24", "fd00::1/64"), server.Address)
		})
	}

	t.Run("Keepalive", func(t *testing.T) {
		i, err := v4.ToInterface(server, DeriveOptions{PersistentKeepalive: 15})
		require.NoError(t, err)
		require.Equal(t, uint16(15), i.Peers[0].PersistentKeepalive)
		require.Equal(t, server.Address, i.Peers[0].AllowedIPs)
	})
}

func TestToInterfaceAmnezia(t *testing.T) {
	server := testServer(t)
	serverSettings := amnezia.Random()
	server.Amnezia = &serverSettings

	peerSettings := amnezia.Random()
	peer := NewPeerBuilder().
		AllowedIPs(prefixes("10.0.0.9/32")...).
		Amnezia(peerSettings).
		Build()

	i, err := peer.ToInterface(server, DeriveOptions{})
	require.NoError(t, err)
	require.Equal(t, &peerSettings, i.Amnezia)
	require.Equal(t, &serverSettings, i.Peers[0].Amnezia)
}

func TestTutorial(t *testing.T) {
	server := NewInterfaceBuilder().
		Address(prefixes("10.0.0.1/24")...).
		ListenPort(51820).
		Build()
	client := NewPeerBuilder().
		AllowedIPs(prefixes("10.0.0.2/32")...).
		Build()
	server.Peers = append(server.Peers, client)

	derived, err := client.ToInterface(server, DeriveOptions{DefaultGateway: true})
	require.NoError(t, err)

	rendered := derived.String()
	require.Contains(t, rendered, "Address = 10.0.0.2/24\n")
	require.Contains(t, rendered, "AllowedIPs = 0.0.0.0/0\n")
	require.Contains(t, rendered, "PublicKey = "+server.PrivateKey.PublicKey().String()+"\n")
	require.Contains(t, server.String(), "PublicKey = "+derived.PrivateKey.PublicKey().String()+"\n")
}
