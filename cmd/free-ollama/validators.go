package main

import (
	"net"
	"net/netip"
	"strconv"
)

// isIP4Addr reports whether val is an IPv4 ip:port pair.
func isIP4Addr(val string) bool {
	addr, ok := parseAddrPort(val)

	return ok && addr.Addr().Is4()
}

// isIP6Addr reports whether val is a bracketed IPv6 [ip]:port pair.
func isIP6Addr(val string) bool {
	addr, ok := parseAddrPort(val)

	return ok && addr.Addr().Is6() && !addr.Addr().Is4In6()
}

func isUDP4AddrResolvable(val string) bool {
	if !isIP4Addr(val) {
		return false
	}

	_, err := net.ResolveUDPAddr("udp4", val)

	return err == nil
}

func isUDP6AddrResolvable(val string) bool {
	if !isIP6Addr(val) {
		return false
	}

	_, err := net.ResolveUDPAddr("udp6", val)

	return err == nil
}

// isTCPAddr accepts only IP literals since it names a listening address.
func isTCPAddr(val string) bool {
	return isIP4Addr(val) || isIP6Addr(val)
}

// isHostPort accepts host names as well as IP literals.
func isHostPort(val string) bool {
	host, port, err := net.SplitHostPort(val)
	if err != nil || host == "" {
		return false
	}

	n, err := strconv.Atoi(port)

	return err == nil && n > 0 && n <= 65535
}

func isLogLevel(val string) bool {
	switch val {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func parseAddrPort(val string) (netip.AddrPort, bool) {
	addr, err := netip.ParseAddrPort(val)
	if err != nil {
		return netip.AddrPort{}, false
	}

	return addr, true
}
