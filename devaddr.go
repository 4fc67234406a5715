package devmac

import (
	"encoding/binary"
	"encoding/hex"
)

// DevAddr is the 32-bit device address assigned by the network at join
// time (or provisioned for ABP).
type DevAddr uint32

// String renders the address as 8 lowercase hex digits.
func (a DevAddr) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(a))
	return hex.EncodeToString(b[:])
}

// MarshalBinary encodes the address little-endian, as it appears in an
// FHDR.
func (a DevAddr) MarshalBinary() ([]byte, error) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(a))
	return b, nil
}

// UnmarshalBinary decodes a little-endian-encoded address.
func (a *DevAddr) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errLen("DevAddr", 4)
	}
	*a = DevAddr(binary.LittleEndian.Uint32(data))
	return nil
}
