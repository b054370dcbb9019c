package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTable(t *testing.T) {
	var zero Table
	require.Equal(t, TableAuto, zero)

	for _, tt := range []struct {
		Input string
		Table Table
	}{
		{"auto", TableAuto},
		{"off", TableOff},
		{"0", RoutingTable(0)},
		{"1234", RoutingTable(1234)},
		{"4294967295", RoutingTable(4294967295)},
	} {
		t.Run(tt.Input, func(t *testing.T) {
			got, err := ParseTable(tt.Input)
			require.NoError(t, err)
			require.Equal(t, tt.Table, got)
			require.Equal(t, tt.Input, got.String())
		})
	}

	for _, input := range []string{"", "on", "-1", "4294967296", "1.5"} {
		_, err := ParseTable(input)
		require.Error(t, err, input)
	}

	id, ok := RoutingTable(7).ID()
	require.True(t, ok)
	require.Equal(t, uint32(7), id)
	_, ok = TableOff.ID()
	require.False(t, ok)
}

func TestTableYAML(t *testing.T) {
	type document struct {
		Table Table `yaml:"table"`
	}

	for _, tt := range []struct {
		Table Table
		YAML  string
	}{
		{TableAuto, "table: auto\n"},
		{TableOff, "table: \"off\"\n"},
		{RoutingTable(100), "table: 100\n"},
	} {
		t.Run(tt.Table.String(), func(t *testing.T) {
			out, err := yaml.Marshal(document{Table: tt.Table})
			require.NoError(t, err)
			require.Equal(t, tt.YAML, string(out))

			var got document
			require.NoError(t, yaml.Unmarshal(out, &got))
			require.Equal(t, tt.Table, got.Table)
		})
	}

	var d document
	require.Error(t, yaml.Unmarshal([]byte("table: never\n"), &d))
}

func TestTableTOML(t *testing.T) {
	out, err := RoutingTable(42).MarshalTOML()
	require.NoError(t, err)
	require.Equal(t, "42", string(out))

	out, err = TableOff.MarshalTOML()
	require.NoError(t, err)
	require.Equal(t, `"off"`, string(out))
}

func TestTableTOMLDecode(t *testing.T) {
	type document struct {
		Table *Table `toml:"table"`
	}

	for _, tt := range []struct {
		Input string
		Table Table
	}{
		{"table = 42", RoutingTable(42)},
		{`table = "off"`, TableOff},
		{`table = "auto"`, TableAuto},
		{`table = "7"`, RoutingTable(7)},
	} {
		var d document
		_, err := toml.Decode(tt.Input, &d)
		require.NoError(t, err, tt.Input)
		require.Equal(t, tt.Table, *d.Table, tt.Input)
	}

	for _, input := range []string{"table = -1", "table = 4294967296", "table = true"} {
		var d document
		_, err := toml.Decode(input, &d)
		require.Error(t, err, input)
	}
}
