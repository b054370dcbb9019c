package config

import (
	"embed"
	"io"
	"net/netip"
	"strings"
	"text/template"

	"github.com/go-faster/errors"

	"github.com/ernado/wg-conf/internal/keys"
)

//go:embed *.conf.tmpl
var templates embed.FS

var configTemplate = template.Must(
	template.New("config").Funcs(template.FuncMap{
		"addresses": joinAddresses,
		"prefixes":  joinPrefixes,
		"join":      joinStrings,
		"publicKey": publicKey,
	}).ParseFS(templates, "*.conf.tmpl"),
)

// joinAddresses joins interface addresses, rendering /32 and /128 networks
// as plain addresses.
func joinAddresses(prefixes []netip.Prefix) string {
	s := make([]string, len(prefixes))
	for i, p := range prefixes {
		if p.IsSingleIP() {
			s[i] = p.Addr().String()
		} else {
			s[i] = p.String()
		}
	}
	return joinStrings(s)
}

func joinPrefixes(prefixes []netip.Prefix) string {
	s := make([]string, len(prefixes))
	for i, p := range prefixes {
		s[i] = p.String()
	}
	return joinStrings(s)
}

func joinStrings(s []string) string {
	return strings.Join(s, ",")
}

func publicKey(k keys.Key) (keys.PublicKey, error) {
	if k == nil {
		return keys.PublicKey{}, errors.New("peer has no key")
	}
	return k.PublicKey(), nil
}

func render(w io.Writer, name string, data any) error {
	if err := configTemplate.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	return nil
}

// renderString renders template into string. On failure the output
// rendered so far is kept and ends with "# error:" comment line.
func renderString(name string, data any) string {
	var b strings.Builder
	if err := render(&b, name, data); err != nil {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("# error: ")
		b.WriteString(err.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// Render writes wg-quick configuration with [Interface] and [Peer] sections.
func (i Interface) Render(w io.Writer) error {
	return render(w, "interface.conf.tmpl", i)
}

// String returns rendered configuration. If some peer has no key, output
// is truncated at that peer and ends with "# error:" comment. Use Render
// to get the error.
func (i Interface) String() string {
	return renderString("interface.conf.tmpl", i)
}

// Render writes [Peer] section.
//
// Public key is derived if peer holds private key.
func (p Peer) Render(w io.Writer) error {
	return render(w, "peer.conf.tmpl", p)
}

// String returns rendered [Peer] section. If peer has no key, output ends
// with "# error:" comment instead. Use Render to get the error.
func (p Peer) String() string {
	return renderString("peer.conf.tmpl", p)
}
