package rpsl

import (
	"net/netip"
	"strings"
)

/*
netutil.go implements the unified IPv6 address-space embedding used
throughout the network tree and the object DOM's network-valued
attributes: every IPv4 network is re-expressed inside ::ffff:0:0/96 with
its prefix length incremented by 96, so that containment arithmetic and
sort order only ever need to reason about one address family.
*/

// V4MappedPrefix is the well-known ::ffff:0:0/96 block that IPv4
// networks are embedded into.
var V4MappedPrefix = netip.MustParsePrefix("::ffff:0:0/96")

const v4MappedBits = 96

/*
AsNet6 parses s -- a CIDR ("172.21.64.0/29", "fdea:a15a:77b9::/48") or a
bare address ("172.21.64.1") -- into its canonical IPv6 [netip.Prefix]
form. A bare address is treated as a host route (/32 or /128). IPv4
input is embedded into [V4MappedPrefix] with the prefix length increased
by 96, satisfying "for every IPv4 network p/n, AsNet6(p/n) equals
::ffff:<p>/(n+96)".
*/
func AsNet6(s string) (netip.Prefix, error) {
	s = trimS(s)
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, ErrInvalidNetwork
		}
		return canonicalize(netip.PrefixFrom(addr, addrBits(addr)))
	}

	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, ErrInvalidNetwork
	}
	return canonicalize(p)
}

func addrBits(a netip.Addr) int {
	if a.Is4() {
		return 32
	}
	return 128
}

func canonicalize(p netip.Prefix) (netip.Prefix, error) {
	addr := p.Addr()
	if addr.Is4() {
		v4 := addr.As4()
		mapped := netip.AddrFrom16([16]byte{
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff,
			v4[0], v4[1], v4[2], v4[3],
		})
		return netip.PrefixFrom(mapped, p.Bits()+v4MappedBits), nil
	}
	return p, nil
}

/*
IsV4Mapped reports whether p's address falls within [V4MappedPrefix].
*/
func IsV4Mapped(p netip.Prefix) bool {
	return V4MappedPrefix.Contains(p.Addr())
}

/*
DisplayNet6 renders p the way the registry's sidecars and WHOIS output
expect: IPv4-mapped networks are rendered as a dotted-quad with the
prefix length reduced by 96; everything else is rendered as a normal
IPv6 CIDR string.
*/
func DisplayNet6(p netip.Prefix) string {
	if IsV4Mapped(p) && p.Bits() >= v4MappedBits {
		v4 := p.Addr().As4()
		v4addr := netip.AddrFrom4(v4)
		return netip.PrefixFrom(v4addr, p.Bits()-v4MappedBits).String()
	}
	return p.String()
}

/*
explodedAddr renders a's full 32-hex-digit form with no "::"
compression, used as the tree's tie-breaking sort key.
*/
func explodedAddr(a netip.Addr) string {
	a16 := a.As16()
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(39)
	for i, by := range a16 {
		if i > 0 && i%2 == 0 {
			b.WriteByte(':')
		}
		b.WriteByte(hex[by>>4])
		b.WriteByte(hex[by&0xf])
	}
	return b.String()
}

/*
lastAddr returns the final address of p's range (its broadcast address
for an IPv4 block), used by the inetnum/inet6num sanity check.
*/
func lastAddr(p netip.Prefix) netip.Addr {
	base := p.Masked().Addr()
	b := base.AsSlice()
	hostBits := base.BitLen() - p.Bits()
	for i := len(b) - 1; i >= 0 && hostBits > 0; i-- {
		if hostBits >= 8 {
			b[i] = 0xff
			hostBits -= 8
		} else {
			b[i] |= byte(0xff >> (8 - hostBits))
			hostBits = 0
		}
	}
	addr, _ := netip.AddrFromSlice(b)
	return addr
}

/*
compareNetOrder implements the network tree's build-and-serialize
order: ascending prefix length, then ascending exploded address.
*/
func compareNetOrder(a, b netip.Prefix) int {
	if a.Bits() != b.Bits() {
		if a.Bits() < b.Bits() {
			return -1
		}
		return 1
	}
	ea, eb := explodedAddr(a.Addr()), explodedAddr(b.Addr())
	switch {
	case ea < eb:
		return -1
	case ea > eb:
		return 1
	default:
		return 0
	}
}
