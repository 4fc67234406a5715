package devmac

import "fmt"

// PHYPayload is the full over-the-air frame: MHDR ‖ MACPayload ‖ MIC.
type PHYPayload struct {
	MHDR       MHDR
	MACPayload Payload
	MIC        MIC
}

// IsUplink reports whether the frame's MType makes it an uplink frame.
func (p PHYPayload) IsUplink() bool {
	switch p.MHDR.MType {
	case JoinRequest, UnconfirmedDataUp, ConfirmedDataUp, RejoinRequest:
		return true
	default:
		return false
	}
}

// MarshalBinary encodes the full frame, including the MIC field as it
// currently stands (zero if not yet computed).
func (p PHYPayload) MarshalBinary() ([]byte, error) {
	b, err := p.marshalWithoutMIC()
	if err != nil {
		return nil, err
	}
	return append(b, p.MIC[:]...), nil
}

// marshalWithoutMIC encodes MHDR ‖ MACPayload; this is the byte range
// that MIC computation authenticates.
func (p PHYPayload) marshalWithoutMIC() ([]byte, error) {
	mh, err := p.MHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if p.MACPayload == nil {
		return mh, nil
	}
	mp, err := p.MACPayload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(mh, mp...), nil
}

// MarshalForMIC returns MHDR ‖ MACPayload, the message body that
// feeds the B0/B1 CMAC construction in package crypto.
func (p PHYPayload) MarshalForMIC() ([]byte, error) {
	return p.marshalWithoutMIC()
}

// UpdateMIC overwrites the trailing four bytes of an already-encoded
// frame with mic, little-endian, without re-encoding the rest.
func UpdateMIC(buf []byte, mic MIC) error {
	if len(buf) < 4 {
		return fmt.Errorf("devmac: buffer too short (%d bytes) to carry a MIC", len(buf))
	}
	copy(buf[len(buf)-4:], mic[:])
	return nil
}

// UnmarshalBinary decodes a full PHYPayload. data must be at least 5
// bytes (1 byte MHDR + 4 byte MIC).
func (p *PHYPayload) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return fmt.Errorf("devmac: PHYPayload too short (%d bytes)", len(data))
	}
	if err := p.MHDR.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}
	copy(p.MIC[:], data[len(data)-4:])

	body := data[1 : len(data)-4]

	switch p.MHDR.MType {
	case JoinRequest:
		pl := &JoinRequestPayload{}
		if err := pl.UnmarshalBinary(body); err != nil {
			return err
		}
		p.MACPayload = pl
	case JoinAccept:
		pl := &JoinAcceptPayload{}
		if err := pl.UnmarshalBinary(body); err != nil {
			return err
		}
		p.MACPayload = pl
	case UnconfirmedDataUp, UnconfirmedDataDown, ConfirmedDataUp, ConfirmedDataDown:
		pl := &MACPayload{}
		if err := pl.UnmarshalBinary(body); err != nil {
			return err
		}
		p.MACPayload = pl
	default:
		return fmt.Errorf("devmac: unsupported MType %s", p.MHDR.MType)
	}
	return nil
}
