package server

import (
	"crypto/tls"
	"net"

	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

// AutocertConfig configures automatic TLS certificate issuance via
// Let's Encrypt. Grounded on the teacher's
// examples/letsencrypt/letsencryptserver.go.
type AutocertConfig struct {
	// Hosts is the whitelist of domains the manager will request
	// certificates for.
	Hosts []string
	// CacheDir is where issued certificates are cached on disk.
	CacheDir string
}

// WrapListener wraps ln in a TLS listener backed by an autocert.Manager,
// so a Server can terminate TLS using certificates issued on demand.
func WrapListener(ln net.Listener, cfg AutocertConfig) net.Listener {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Hosts...),
		Cache:      autocert.DirCache(cfg.CacheDir),
	}

	tlsCfg := &tls.Config{
		GetCertificate: m.GetCertificate,
		NextProtos: []string{
			"http/1.1", acme.ALPNProto,
		},
	}

	return tls.NewListener(ln, tlsCfg)
}
