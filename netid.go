package devmac

import "encoding/hex"

// NetID is the 24-bit network identifier delivered in a join-accept.
type NetID [3]byte

// String renders the NetID as 6 lowercase hex digits.
func (n NetID) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalBinary encodes the NetID little-endian.
func (n NetID) MarshalBinary() ([]byte, error) {
	return []byte{n[0], n[1], n[2]}, nil
}

// UnmarshalBinary decodes a little-endian-encoded NetID.
func (n *NetID) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return errLen("NetID", 3)
	}
	copy(n[:], data)
	return nil
}
