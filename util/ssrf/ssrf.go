/*
 * Written in 2019 by Andrew Ayer.
 * Patched 2025, Gander Social PBC.
 *
 * Original: https://www.agwa.name/blog/post/preventing_server_side_request_forgery_in_golang
 *
 * To the extent possible under law, the author(s) have dedicated all
 * copyright and related and neighboring rights to this software to the
 * public domain worldwide. This software is distributed without any
 * warranty.
 *
 * You should have received a copy of the CC0 Public
 * Domain Dedication along with this software. If not, see
 * <https://creativecommons.org/publicdomain/zero/1.0/>.
 */

// Package ssrf provides dialers which refuse connections to non-public
// network addresses, for fetching URLs supplied by untrusted input.
package ssrf

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),       // Current network
	netip.MustParsePrefix("10.0.0.0/8"),      // Private
	netip.MustParsePrefix("100.64.0.0/10"),   // RFC6598
	netip.MustParsePrefix("127.0.0.0/8"),     // Loopback
	netip.MustParsePrefix("169.254.0.0/16"),  // Link-local
	netip.MustParsePrefix("172.16.0.0/12"),   // Private
	netip.MustParsePrefix("192.0.0.0/24"),    // RFC6890
	netip.MustParsePrefix("192.0.2.0/24"),    // Test, doc, examples
	netip.MustParsePrefix("192.88.99.0/24"),  // IPv6 to IPv4 relay
	netip.MustParsePrefix("192.168.0.0/16"),  // Private
	netip.MustParsePrefix("198.18.0.0/15"),   // Benchmarking tests
	netip.MustParsePrefix("198.51.100.0/24"), // Test, doc, examples
	netip.MustParsePrefix("203.0.113.0/24"),  // Test, doc, examples
	netip.MustParsePrefix("224.0.0.0/4"),     // Multicast
	netip.MustParsePrefix("240.0.0.0/4"),     // Reserved, includes broadcast
}

var globalUnicastIPv6 = netip.MustParsePrefix("2000::/3")

var allowedPorts = map[string]bool{
	"80":  true,
	"443": true,
}

func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.Is4() {
		for _, p := range reservedPrefixes {
			if p.Contains(addr) {
				return false
			}
		}
		return true
	}
	return globalUnicastIPv6.Contains(addr)
}

// Implementation of the [net.Dialer] Control hook which rejects non-public IPv4 and IPv6 addresses, and any port other than 80 or 443.
func PublicOnlyControl(network string, address string, conn syscall.RawConn) error {
	if network != "tcp4" && network != "tcp6" {
		return fmt.Errorf("%s is not a safe network type", network)
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%s is not a valid host/port pair: %w", address, err)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%s is not a valid IP address", host)
	}

	if !IsPublicAddr(addr) {
		return fmt.Errorf("%s is not a public IP address", addr)
	}

	if !allowedPorts[port] {
		return fmt.Errorf("%s is not a safe port number", port)
	}

	return nil
}

func PublicOnlyDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   PublicOnlyControl,
	}
}

// [http.Transport] which dials through [PublicOnlyDialer]. Proxies are not honoured, since a proxy would bypass the address check.
func PublicOnlyTransport() *http.Transport {
	dialer := PublicOnlyDialer()
	return &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
