package webtools

import "net/netip"

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// CheckPublicAddr returns EINVALID if addr is not a publicly routable unicast
// address. Outbound requests made on behalf of users go through this check so
// the tools cannot be pointed at the host or its private network.
func CheckPublicAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid():
		return Errorf(EINVALID, "invalid address")
	case addr.IsLoopback():
		return Errorf(EINVALID, "address %s is a loopback address", addr)
	case addr.IsPrivate(), sharedAddressSpace.Contains(addr):
		return Errorf(EINVALID, "address %s is a private address", addr)
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return Errorf(EINVALID, "address %s is a link-local address", addr)
	case addr.IsUnspecified():
		return Errorf(EINVALID, "address %s is unspecified", addr)
	case addr.IsMulticast(), addr.IsInterfaceLocalMulticast():
		return Errorf(EINVALID, "address %s is a multicast address", addr)
	}
	return nil
}
