package config

import (
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

type tableKind uint8

const (
	tableAuto tableKind = iota
	tableOff
	tableID
)

// Table controls the routing table to which routes are added.
//
// Zero value is TableAuto.
type Table struct {
	kind tableKind
	id   uint32
}

var (
	// TableAuto adds routes to the default table and enables special
	// handling of default routes.
	TableAuto = Table{kind: tableAuto}
	// TableOff disables creation of routes.
	TableOff = Table{kind: tableOff}
)

// RoutingTable selects routing table by id.
func RoutingTable(id uint32) Table {
	return Table{kind: tableID, id: id}
}

// ID returns routing table id, if set.
func (t Table) ID() (uint32, bool) {
	return t.id, t.kind == tableID
}

func (t Table) String() string {
	switch t.kind {
	case tableOff:
		return "off"
	case tableID:
		return strconv.FormatUint(uint64(t.id), 10)
	default:
		return "auto"
	}
}

// ParseTable parses routing table id, "off" or "auto".
func ParseTable(s string) (Table, error) {
	switch s {
	case "off":
		return TableOff, nil
	case "auto":
		return TableAuto, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Table{}, errors.Errorf("invalid table %q: expected number, off or auto", s)
	}
	return RoutingTable(uint32(id)), nil
}

func (t Table) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Table) UnmarshalText(data []byte) error {
	v, err := ParseTable(string(data))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalTOML encodes table as integer or string.
func (t Table) MarshalTOML() ([]byte, error) {
	if id, ok := t.ID(); ok {
		return strconv.AppendUint(nil, uint64(id), 10), nil
	}
	return strconv.AppendQuote(nil, t.String()), nil
}

// MarshalYAML encodes table as integer or string.
func (t Table) MarshalYAML() (interface{}, error) {
	if id, ok := t.ID(); ok {
		return id, nil
	}
	return t.String(), nil
}

func (t *Table) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return errors.Wrap(err, "decode table")
	}
	return t.UnmarshalText([]byte(str))
}

// UnmarshalTOML decodes table from integer or string.
func (t *Table) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return errors.Errorf("invalid table %d: out of range", v)
		}
		*t = RoutingTable(uint32(v))
		return nil
	case string:
		return t.UnmarshalText([]byte(v))
	default:
		return errors.Errorf("invalid table type %T", v)
	}
}
