// Package amnezia implements AmneziaWG obfuscation settings.
package amnezia

import (
	"math/rand"
)

const (
	maxJunkCount = 128
	maxJunkSize  = 1280
	// Initiation and response handshake messages are 148 and 92 bytes,
	// padding must keep them within maxJunkSize.
	maxInitPadding     = maxJunkSize - 148
	maxResponsePadding = maxJunkSize - 92
	// S1 + initPaddingDelta == S2 makes padded messages the same size.
	initPaddingDelta = 56
)

// Settings are AmneziaWG junk packet and header obfuscation values.
//
// All fields are zero when unset; use Validate to check them.
type Settings struct {
	// Jc is the number of junk packets sent before the handshake.
	Jc uint16 `yaml:"jc" toml:"jc"`
	// Jmin and Jmax bound the junk packet size.
	Jmin uint16 `yaml:"jmin" toml:"jmin"`
	Jmax uint16 `yaml:"jmax" toml:"jmax"`
	// S1 and S2 are paddings of handshake initiation and response.
	S1 uint16 `yaml:"s1" toml:"s1"`
	S2 uint16 `yaml:"s2" toml:"s2"`
	// H1-H4 replace message type headers.
	H1 uint32 `yaml:"h1" toml:"h1"`
	H2 uint32 `yaml:"h2" toml:"h2"`
	H3 uint32 `yaml:"h3" toml:"h3"`
	H4 uint32 `yaml:"h4" toml:"h4"`
}

// InvalidSettingError reports the first setting that failed validation.
type InvalidSettingError struct {
	Field string
}

func (e *InvalidSettingError) Error() string {
	return "invalid amnezia setting: " + e.Field
}

func invalid(field string) error {
	return &InvalidSettingError{Field: field}
}

// Validate checks settings in a fixed order and reports only the first
// violation.
func (s Settings) Validate() error {
	if s.Jc < 1 || s.Jc > maxJunkCount {
		return invalid("Jc")
	}
	if s.Jmin > s.Jmax || s.Jmin > maxJunkSize {
		return invalid("Jmin")
	}
	if s.Jmax > maxJunkSize {
		return invalid("Jmax")
	}
	if s.S1 > maxInitPadding || uint32(s.S1)+initPaddingDelta == uint32(s.S2) {
		return invalid("S1")
	}
	if s.S2 > maxResponsePadding {
		return invalid("S2")
	}
	headers := [...]uint32{s.H1, s.H2, s.H3, s.H4}
	for i := range headers {
		for j := i + 1; j < len(headers); j++ {
			if headers[i] == headers[j] {
				return invalid("H1/H2/H3/H4")
			}
		}
	}
	return nil
}

// Random returns settings within recommended ranges.
//
// The result always passes Validate.
func Random() Settings {
	s := Settings{
		Jc:   uint16(4 + rand.Intn(9)),
		Jmin: uint16(8 + rand.Intn(43)),
		S1:   uint16(15 + rand.Intn(136)),
	}
	s.Jmax = s.Jmin + uint16(30+rand.Intn(971))
	for {
		s.S2 = uint16(15 + rand.Intn(136))
		if s.S1+initPaddingDelta != s.S2 {
			break
		}
	}

	// Values 1-4 are the standard WireGuard message types.
	const minHeader, maxHeader = 5, 1<<31 - 1
	seen := make(map[uint32]struct{}, 4)
	headers := make([]uint32, 0, 4)
	for len(headers) < 4 {
		h := uint32(minHeader + rand.Int63n(maxHeader-minHeader+1))
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		headers = append(headers, h)
	}
	s.H1, s.H2, s.H3, s.H4 = headers[0], headers[1], headers[2], headers[3]

	return s
}
