package devmac

import "encoding/hex"

// EUI64 is a 64-bit IEEE EUI, used for both JoinEUI and DevEUI. The byte
// order of the array is the natural (MSB-first) textual order; the frame
// codec reverses it when placing it on the wire.
type EUI64 [8]byte

// String renders the EUI as 16 lowercase hex digits, MSB first.
func (e EUI64) String() string {
	return hex.EncodeToString(e[:])
}

// DevNonce is the 16-bit nonce a device picks for each join attempt.
type DevNonce uint16

// JoinNonce is the 24-bit nonce a join server assigns per join-accept.
type JoinNonce uint32
