package benchmark

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Protocol selects the HTTP version used for sampling
type Protocol string

const (
	ProtocolHTTP1 Protocol = "http1"
	ProtocolHTTP2 Protocol = "http2"
	ProtocolHTTP3 Protocol = "http3"
)

// ParseProtocol parses a protocol name, accepting the usual aliases
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "http1", "http/1.1", "h1":
		return ProtocolHTTP1, nil
	case "http2", "http/2", "h2":
		return ProtocolHTTP2, nil
	case "http3", "http/3", "h3":
		return ProtocolHTTP3, nil
	default:
		return "", fmt.Errorf("unsupported protocol: %q", s)
	}
}

// NewHTTPClient creates a client speaking the given protocol.
// Connections are kept alive between samples so that only the first request
// pays for the handshake.
func NewHTTPClient(protocol Protocol, timeout time.Duration) (*http.Client, error) {
	switch protocol {
	case ProtocolHTTP1:
		return &http.Client{Transport: newTCPTransport(timeout, false), Timeout: timeout}, nil
	case ProtocolHTTP2:
		return &http.Client{Transport: newTCPTransport(timeout, true), Timeout: timeout}, nil
	case ProtocolHTTP3:
		return &http.Client{
			Transport: &http3.Transport{
				TLSClientConfig: &tls.Config{},
			},
			Timeout: timeout,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %q", protocol)
	}
}

func newTCPTransport(timeout time.Duration, http2 bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}

	nextProtos := []string{"http/1.1"}
	if http2 {
		nextProtos = []string{"h2", "http/1.1"}
	}

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     &tls.Config{NextProtos: nextProtos},
		ForceAttemptHTTP2:   http2,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}
