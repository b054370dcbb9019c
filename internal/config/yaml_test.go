package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ernado/wg-conf/internal/amnezia"
	"github.com/ernado/wg-conf/internal/keys"
)

func TestInterfaceYAML(t *testing.T) {
	server := testServer(t)
	s := amnezia.Settings{Jc: 4, Jmin: 40, Jmax: 70, S1: 50, S2: 100, H1: 1, H2: 2, H3: 3, H4: 4}
	server.Amnezia = &s
	table := RoutingTable(51820)
	server.Table = &table

	out, err := yaml.Marshal(server)
	require.NoError(t, err)

	var got Interface
	require.NoError(t, yaml.Unmarshal(out, &got))
	if diff := cmp.Diff(server.String(), got.String()); diff != "" {
		t.Fatalf("rendered config mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, server, got)
}

func TestPeerYAML(t *testing.T) {
	t.Run("PrivateKey", func(t *testing.T) {
		p := NewPeerBuilder().
			AllowedIPs(prefixes("10.0.0.2/32")...).
			PrivateKey(mustPrivateKey(t, clientPrivateKey)).
			Build()
		out, err := yaml.Marshal(p)
		require.NoError(t, err)
		require.Equal(t, "allowedIPs:\n"+
			"    - 10.0.0.2/32\n"+
			"privateKey: "+clientPrivateKey+"\n",
			string(out),
		)

		var got Peer
		require.NoError(t, yaml.Unmarshal(out, &got))
		require.Equal(t, p, got)
	})
	t.Run("PublicKey", func(t *testing.T) {
		psk, err := keys.ParsePresharedKey(presharedKey)
		require.NoError(t, err)
		p := NewPeerBuilder().
			Endpoint("192.0.2.1:51820").
			AllowedIPs(prefixes("10.0.0.0/24", "fd00::/64")...).
			PersistentKeepalive(25).
			PublicKey(mustPublicKey(t, clientPublicKey)).
			PresharedKey(psk).
			Build()
		out, err := yaml.Marshal(p)
		require.NoError(t, err)
		require.Equal(t, "endpoint: 192.0.2.1:51820\n"+
			"allowedIPs:\n"+
			"    - 10.0.0.0/24\n"+
			"    - fd00::/64\n"+
			"persistentKeepalive: 25\n"+
			"publicKey: "+clientPublicKey+"\n"+
			"presharedKey: "+presharedKey+"\n",
			string(out),
		)

		var got Peer
		require.NoError(t, yaml.Unmarshal(out, &got))
		require.Equal(t, p, got)
	})
	t.Run("NoKey", func(t *testing.T) {
		_, err := yaml.Marshal(Peer{})
		require.Error(t, err)
	})
}

func TestPeerYAMLInvalid(t *testing.T) {
	for _, tt := range []struct {
		Name  string
		Input string
	}{
		{"Both", "allowedIPs: []\nprivateKey: " + clientPrivateKey + "\npublicKey: " + clientPublicKey + "\n"},
		{"Neither", "allowedIPs: [10.0.0.2/32]\n"},
		{"BadKey", "publicKey: foo\n"},
		{"BadPrefix", "allowedIPs: [10.0.0.300/32]\npublicKey: " + clientPublicKey + "\n"},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			var p Peer
			require.Error(t, yaml.Unmarshal([]byte(tt.Input), &p))
		})
	}
}
