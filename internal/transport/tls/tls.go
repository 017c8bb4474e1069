/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package tls builds the *tls.Config a server-to-server or client listener
// needs (§4.1 "Transport", §6 "Link security") from the relay's own
// certificate configuration, delegating certificate parsing, cipher/curve
// selection, and version pinning to the certificates package.
package tls

import (
	"crypto/tls"

	libtls "github.com/undernet-go/p10d/certificates"
	tlsaut "github.com/undernet-go/p10d/certificates/auth"
	tlscas "github.com/undernet-go/p10d/certificates/ca"
	tlscrt "github.com/undernet-go/p10d/certificates/certs"
	tlscpr "github.com/undernet-go/p10d/certificates/cipher"
	tlscrv "github.com/undernet-go/p10d/certificates/curves"
	tlsvrs "github.com/undernet-go/p10d/certificates/tlsversion"
)

// LinkConfig describes one link's TLS posture: the certificate pair it
// presents, the peer CAs it trusts, and whether it demands a client
// certificate in return (server-to-server links authenticate both ways,
// §6).
type LinkConfig struct {
	ServerName string
	Certs      []tlscrt.Certif
	RootCA     []tlscas.Cert
	ClientCA   []tlscas.Cert
	MutualAuth bool
	VersionMin tlsvrs.Version
	VersionMax tlsvrs.Version
}

// DefaultVersionMin and DefaultVersionMax pin the relay to TLS 1.2 through
// 1.3; a link config that leaves VersionMin/VersionMax unset gets these.
const (
	DefaultVersionMin = tlsvrs.VersionTLS12
	DefaultVersionMax = tlsvrs.VersionTLS13
)

// Build turns a LinkConfig into a *tls.Config ready for tls.Listen or
// tls.Dial, via certificates.Config.New().TLS. Cipher and curve selection
// is left to the certificates package's own defaults (tlscpr.List(),
// tlscrv.List()), which already order suites by preference.
func Build(lc LinkConfig) *tls.Config {
	vmin, vmax := lc.VersionMin, lc.VersionMax
	if vmin == tlsvrs.VersionUnknown {
		vmin = DefaultVersionMin
	}
	if vmax == tlsvrs.VersionUnknown {
		vmax = DefaultVersionMax
	}

	auth := tlsaut.NoClientCert
	if lc.MutualAuth {
		auth = tlsaut.RequireAndVerifyClientCert
	}

	cfg := &libtls.Config{
		CurveList:  tlscrv.List(),
		CipherList: tlscpr.List(),
		Certs:      lc.Certs,
		RootCA:     lc.RootCA,
		ClientCA:   lc.ClientCA,
		VersionMin: vmin,
		VersionMax: vmax,
		AuthClient: auth,
	}

	return cfg.New().TLS(lc.ServerName)
}
