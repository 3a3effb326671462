// Package addr classifies IPv4 dotted-quad address strings into the cast
// modes the ODMRP core dispatches on. Addresses are kept as plain strings
// throughout the simulator; this package only answers "what kind of address
// is this", it does not model address allocation.
package addr

import "regexp"

// ipv4Pattern is the dotted-quad grammar used throughout the simulator.
var ipv4Pattern = regexp.MustCompile(
	`^(?:(?:[01]?\d\d?|2[0-4]\d|25[0-5])\.){3}(?:[01]?\d\d?|2[0-4]\d|25[0-5])$`,
)

// CastMode classifies how a packet addressed to a given destination should
// be dispatched.
type CastMode int

const (
	// NoAddr means the address is not a syntactically valid IPv4 literal
	// (includes IPv6 literals, which this simulator does not support).
	NoAddr CastMode = iota
	// Unicast is any valid IPv4 address that is neither multicast nor the
	// broadcast address.
	Unicast
	// Multicast is any address whose first octet falls in 224-239.
	Multicast
	// Broadcast is exactly 255.255.255.255.
	Broadcast
)

// String renders a CastMode for logging.
func (c CastMode) String() string {
	switch c {
	case Unicast:
		return "unicast"
	case Multicast:
		return "multicast"
	case Broadcast:
		return "broadcast"
	default:
		return "none"
	}
}

// BroadcastAddr is the literal all-ones broadcast address.
const BroadcastAddr = "255.255.255.255"

// Classify determines the CastMode of an address string: IPv4 syntax check
// first, then broadcast, then multicast by first octet in 224-239
// inclusive, else unicast.
//
// Some implementations' multicast regex actually matched first octet
// 224-249; this always applies the corrected 224-239 range.
func Classify(s string) CastMode {
	if !ipv4Pattern.MatchString(s) {
		return NoAddr
	}
	if s == BroadcastAddr {
		return Broadcast
	}
	if isMulticastFirstOctet(s) {
		return Multicast
	}
	return Unicast
}

// IsValid reports whether s is a syntactically valid IPv4 dotted-quad.
func IsValid(s string) bool {
	return ipv4Pattern.MatchString(s)
}

func isMulticastFirstOctet(s string) bool {
	octet := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			break
		}
		octet = octet*10 + int(s[i]-'0')
	}
	return octet >= 224 && octet <= 239
}
