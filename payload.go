package devmac

import "encoding"

// Payload is implemented by every MACPayload variant carried inside a
// PHYPayload.
type Payload interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}
