package devmac

import "fmt"

// MType identifies the PHY payload's message type, carried in the top
// three bits of the MHDR.
type MType byte

// Message types defined by LoRaWAN.
const (
	JoinRequest MType = iota
	JoinAccept
	UnconfirmedDataUp
	UnconfirmedDataDown
	ConfirmedDataUp
	ConfirmedDataDown
	RejoinRequest
	Proprietary
)

func (t MType) String() string {
	switch t {
	case JoinRequest:
		return "JoinRequest"
	case JoinAccept:
		return "JoinAccept"
	case UnconfirmedDataUp:
		return "UnconfirmedDataUp"
	case UnconfirmedDataDown:
		return "UnconfirmedDataDown"
	case ConfirmedDataUp:
		return "ConfirmedDataUp"
	case ConfirmedDataDown:
		return "ConfirmedDataDown"
	case RejoinRequest:
		return "RejoinRequest"
	default:
		return "Proprietary"
	}
}

// Major is the wire-format major version; only LoRaWANR1 exists today.
type Major byte

// LoRaWANR1 is the only defined major version.
const LoRaWANR1 Major = 0

// MHDR is the one-byte MAC header leading every PHY payload: the top
// three bits carry MType, the low two carry Major, and the three bits
// between them are reserved and must be zero on decode.
type MHDR struct {
	MType MType
	Major Major
}

// MarshalBinary encodes the header into its single wire byte.
func (h MHDR) MarshalBinary() ([]byte, error) {
	if h.MType > Proprietary {
		return nil, fmt.Errorf("devmac: invalid MType %d", h.MType)
	}
	return []byte{byte(h.MType)<<5 | byte(h.Major)}, nil
}

// UnmarshalBinary decodes the header, rejecting a nonzero reserved
// field (the low five bits besides the 2-bit Major).
func (h *MHDR) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("MHDR", 1)
	}
	if data[0]&0x1c != 0 {
		return fmt.Errorf("devmac: MHDR reserved bits must be zero, got 0x%02x", data[0])
	}
	h.MType = MType(data[0] >> 5)
	h.Major = Major(data[0] & 0x03)
	return nil
}
