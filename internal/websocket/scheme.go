package websocket

import (
	"fmt"
	"net/url"
)

// Scheme is a URL scheme understood by WithScheme.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeWS    Scheme = "ws"
	SchemeWSS   Scheme = "wss"
	SchemeFTP   Scheme = "ftp"
	SchemeFile  Scheme = "file"
)

func (s Scheme) valid() bool {
	switch s {
	case SchemeHTTP, SchemeHTTPS, SchemeWS, SchemeWSS, SchemeFTP, SchemeFile:
		return true
	}
	return false
}

// WithScheme returns u with its scheme replaced. u itself is returned
// when it already has the requested scheme.
func WithScheme(u *url.URL, scheme Scheme) (*url.URL, error) {
	if u == nil {
		return nil, fmt.Errorf("with scheme %s: nil url", scheme)
	}
	if !scheme.valid() {
		return nil, fmt.Errorf("with scheme: unknown scheme %q", scheme)
	}
	if u.Scheme == string(scheme) {
		return u, nil
	}
	out := *u
	out.Scheme = string(scheme)
	return &out, nil
}

// socketURL maps an http(s) or ws(s) URL onto the matching WebSocket scheme.
func socketURL(u *url.URL) (*url.URL, error) {
	switch Scheme(u.Scheme) {
	case SchemeWS, SchemeWSS:
		return u, nil
	case SchemeHTTP:
		return WithScheme(u, SchemeWS)
	case SchemeHTTPS:
		return WithScheme(u, SchemeWSS)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
