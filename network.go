package ipv4tree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/khalid-nowaf/ipv4tree/pkg/trie"
)

var (
	// ErrInvalidNetwork is wrapped by every error caused by a malformed address or network.
	ErrInvalidNetwork = errors.New("invalid IPv4 network")
	// ErrInvalidThreshold is returned when an aggregation threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid aggregation threshold")
)

// ParseNetwork parses "a.b.c.d/n" or a bare "a.b.c.d", which defaults to /32.
// Host bits must not be set.
func ParseNetwork(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
		}
		return HostNetwork(addr)
	}

	network, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}
	if err := ValidateNetwork(network); err != nil {
		return netip.Prefix{}, err
	}
	return network, nil
}

// MustParseNetwork is like ParseNetwork but panics on error.
func MustParseNetwork(s string) netip.Prefix {
	network, err := ParseNetwork(s)
	if err != nil {
		panic(err)
	}
	return network
}

// HostNetwork returns the /32 network of a single IPv4 address.
func HostNetwork(addr netip.Addr) (netip.Prefix, error) {
	if !addr.Is4() {
		return netip.Prefix{}, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidNetwork, addr)
	}
	return netip.PrefixFrom(addr, trie.MaxDepth), nil
}

// NetworkOf builds a network from an integer address and a prefix length.
func NetworkOf(addr uint32, prefixLen int) (netip.Prefix, error) {
	network := netip.PrefixFrom(Uint32ToAddr(addr), prefixLen)
	if err := ValidateNetwork(network); err != nil {
		return netip.Prefix{}, err
	}
	return network, nil
}

// ValidateNetwork checks that network is a valid IPv4 network without host bits.
func ValidateNetwork(network netip.Prefix) error {
	if !network.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidNetwork, network)
	}
	if !network.Addr().Is4() {
		return fmt.Errorf("%w: %s is not an IPv4 network", ErrInvalidNetwork, network)
	}
	if network.Masked() != network {
		return fmt.Errorf("%w: %s has host bits set", ErrInvalidNetwork, network)
	}
	return nil
}

func AddrToUint32(addr netip.Addr) uint32 {
	ip := addr.As4()
	return binary.BigEndian.Uint32(ip[:])
}

func Uint32ToAddr(addr uint32) netip.Addr {
	var ip [4]byte
	binary.BigEndian.PutUint32(ip[:], addr)
	return netip.AddrFrom4(ip)
}

// AddressCount is the number of addresses a network spans.
func AddressCount(network netip.Prefix) uint64 {
	return 1 << (trie.MaxDepth - network.Bits())
}

// NetworkBits converts a network into the bit path leading to it from the root,
// one entry (0 or 1) per prefix bit.
//
// Example:
//
//	For "192.168.1.0/24" the path holds the first 24 bits of 192.168.1.0.
func NetworkBits(network netip.Prefix) []int {
	addr := AddrToUint32(network.Addr())
	path := make([]int, network.Bits())
	for i := range path {
		path[i] = int(addr>>(trie.MaxDepth-1-i)) & 1
	}
	return path
}
