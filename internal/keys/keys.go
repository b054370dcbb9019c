// Package keys implements WireGuard key types and their base64 encoding.
//
// Go has no deterministic destructors, so key material is erased only when
// Zero is called explicitly. Copies made by assignment are not tracked and
// stay in memory until collected.
package keys

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/curve25519"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
	"gopkg.in/yaml.v3"
)

// Len is the length of every key in bytes.
const Len = wgtypes.KeyLen

var (
	ErrInvalidPrivateKey   = errors.New("invalid private key")
	ErrInvalidPublicKey    = errors.New("invalid public key")
	ErrInvalidPresharedKey = errors.New("invalid preshared key")
)

// Key is either a PrivateKey or a PublicKey, held by value or by pointer.
//
// The interface is sealed: no other implementations exist. Only keys held
// by pointer can be erased in place, see Erase.
type Key interface {
	PublicKey() PublicKey
	String() string

	isKey()
}

var (
	_ Key = PrivateKey{}
	_ Key = PublicKey{}
	_ Key = (*PrivateKey)(nil)
	_ Key = (*PublicKey)(nil)
)

// AsPrivateKey returns private key held by k.
func AsPrivateKey(k Key) (PrivateKey, bool) {
	switch k := k.(type) {
	case PrivateKey:
		return k, true
	case *PrivateKey:
		if k != nil {
			return *k, true
		}
	}
	return PrivateKey{}, false
}

// Erase overwrites bytes of key held by pointer and reports whether it did.
//
// A key held by value is a copy boxed in the interface and can't be
// reached, so Erase returns false for it.
func Erase(k Key) bool {
	switch k := k.(type) {
	case *PrivateKey:
		if k != nil {
			k.Zero()
			return true
		}
	case *PublicKey:
		if k != nil {
			k.Zero()
			return true
		}
	}
	return false
}

// PrivateKey is a Curve25519 private key.
type PrivateKey [Len]byte

// PublicKey is a Curve25519 public key.
type PublicKey [Len]byte

// PresharedKey is a symmetric key mixed into the handshake.
type PresharedKey [Len]byte

// RandomPrivateKey generates a new private key from crypto/rand.
func RandomPrivateKey() PrivateKey {
	k, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(errors.Wrap(err, "generate private key"))
	}
	return PrivateKey(k)
}

// RandomPresharedKey generates a new preshared key from crypto/rand.
func RandomPresharedKey() PresharedKey {
	k, err := wgtypes.GenerateKey()
	if err != nil {
		panic(errors.Wrap(err, "generate preshared key"))
	}
	return PresharedKey(k)
}

func decode(s string) ([Len]byte, bool) {
	var k [Len]byte
	// DecodeString skips newlines, so check the length first to accept
	// exactly one canonical form.
	if len(s) != base64.StdEncoding.EncodedLen(Len) {
		return k, false
	}
	parsed, err := wgtypes.ParseKey(s)
	if err != nil {
		return k, false
	}
	// Non-zero padding bits decode to the same key, reject them.
	if parsed.String() != s {
		return k, false
	}
	return parsed, true
}

func encode(k [Len]byte) string {
	return base64.StdEncoding.EncodeToString(k[:])
}

func ParsePrivateKey(s string) (PrivateKey, error) {
	k, ok := decode(s)
	if !ok {
		return PrivateKey{}, ErrInvalidPrivateKey
	}
	return k, nil
}

func ParsePublicKey(s string) (PublicKey, error) {
	k, ok := decode(s)
	if !ok {
		return PublicKey{}, ErrInvalidPublicKey
	}
	return k, nil
}

func ParsePresharedKey(s string) (PresharedKey, error) {
	k, ok := decode(s)
	if !ok {
		return PresharedKey{}, ErrInvalidPresharedKey
	}
	return k, nil
}

// PublicKey derives the public key.
func (k PrivateKey) PublicKey() PublicKey {
	var publicKey [Len]byte
	curve25519.ScalarBaseMult(&publicKey, (*[Len]byte)(&k))
	return publicKey
}

// PublicKey returns k itself.
func (k PublicKey) PublicKey() PublicKey { return k }

func (PrivateKey) isKey() {}
func (PublicKey) isKey()  {}

// String returns the base64 encoding of the key, as used in config files.
func (k PrivateKey) String() string   { return encode(k) }
func (k PublicKey) String() string    { return encode(k) }
func (k PresharedKey) String() string { return encode(k) }

// Equal reports whether keys are equal in constant time.
func (k PrivateKey) Equal(o PrivateKey) bool {
	return subtle.ConstantTimeCompare(k[:], o[:]) == 1
}

func (k PublicKey) Equal(o PublicKey) bool {
	return subtle.ConstantTimeCompare(k[:], o[:]) == 1
}

func (k PresharedKey) Equal(o PresharedKey) bool {
	return subtle.ConstantTimeCompare(k[:], o[:]) == 1
}

func (k PrivateKey) IsZero() bool   { return k.Equal(PrivateKey{}) }
func (k PublicKey) IsZero() bool    { return k.Equal(PublicKey{}) }
func (k PresharedKey) IsZero() bool { return k.Equal(PresharedKey{}) }

// Zero overwrites key bytes.
func (k *PrivateKey) Zero()   { clear(k[:]) }
func (k *PublicKey) Zero()    { clear(k[:]) }
func (k *PresharedKey) Zero() { clear(k[:]) }

func (k PrivateKey) MarshalText() ([]byte, error)   { return []byte(k.String()), nil }
func (k PublicKey) MarshalText() ([]byte, error)    { return []byte(k.String()), nil }
func (k PresharedKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PrivateKey) UnmarshalText(data []byte) error {
	v, err := ParsePrivateKey(string(data))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k *PublicKey) UnmarshalText(data []byte) error {
	v, err := ParsePublicKey(string(data))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k *PresharedKey) UnmarshalText(data []byte) error {
	v, err := ParsePresharedKey(string(data))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k PrivateKey) MarshalYAML() (interface{}, error)   { return k.String(), nil }
func (k PublicKey) MarshalYAML() (interface{}, error)    { return k.String(), nil }
func (k PresharedKey) MarshalYAML() (interface{}, error) { return k.String(), nil }

func (k *PrivateKey) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return errors.Wrap(err, "decode private key")
	}
	return k.UnmarshalText([]byte(str))
}

func (k *PublicKey) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return errors.Wrap(err, "decode public key")
	}
	return k.UnmarshalText([]byte(str))
}

func (k *PresharedKey) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return errors.Wrap(err, "decode preshared key")
	}
	return k.UnmarshalText([]byte(str))
}

// MarshalBinary returns raw key bytes.
func (k PrivateKey) MarshalBinary() ([]byte, error)   { return append([]byte(nil), k[:]...), nil }
func (k PublicKey) MarshalBinary() ([]byte, error)    { return append([]byte(nil), k[:]...), nil }
func (k PresharedKey) MarshalBinary() ([]byte, error) { return append([]byte(nil), k[:]...), nil }

func (k *PrivateKey) UnmarshalBinary(data []byte) error {
	if len(data) != Len {
		return ErrInvalidPrivateKey
	}
	copy(k[:], data)
	return nil
}

func (k *PublicKey) UnmarshalBinary(data []byte) error {
	if len(data) != Len {
		return ErrInvalidPublicKey
	}
	copy(k[:], data)
	return nil
}

func (k *PresharedKey) UnmarshalBinary(data []byte) error {
	if len(data) != Len {
		return ErrInvalidPresharedKey
	}
	copy(k[:], data)
	return nil
}
