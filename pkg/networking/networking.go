// Package networking provides the loopback-only binding policy and port
// helpers used when the bridge brings up its listeners.
package networking

import (
	"fmt"
	"net"

	"github.com/foxmcp/foxmcp/pkg/logger"
)

// DefaultHost is the address every listener binds to. The bridge is
// loopback-only by construction; see EnsureLoopback.
const DefaultHost = "127.0.0.1"

// IsLoopback reports whether host names a loopback address. Hostnames are
// resolved; a host is loopback only if every resolved address is.
func IsLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	addrs, err := net.LookupIP(host)
	if err != nil || len(addrs) == 0 {
		return false
	}
	for _, addr := range addrs {
		if !addr.IsLoopback() {
			return false
		}
	}
	return true
}

// EnsureLoopback returns host unchanged when it is a loopback address and
// rewrites anything else to DefaultHost with a warning. External binding is
// rejected by construction rather than by error.
func EnsureLoopback(host string) string {
	if host == "" {
		return DefaultHost
	}
	if IsLoopback(host) {
		return host
	}
	logger.Warnf("Host %q is not a loopback address; binding to %s instead", host, DefaultHost)
	return DefaultHost
}

// IsAvailable checks if a TCP port is available on the loopback interface.
func IsAvailable(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", DefaultHost, port))
	if err != nil {
		return false
	}
	l.Close()
	return true
}
