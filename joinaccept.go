package devmac

import "fmt"

// DLSettings packs the downlink parameters a join-accept hands to the
// device: whether 1.1 key negotiation is in effect, the RX1 data-rate
// offset and the RX2 data-rate.
type DLSettings struct {
	OptNeg      bool
	RX1DROffset uint8 // 0..7
	RX2DataRate uint8 // 0..15
}

// MarshalBinary encodes DLSettings into its single wire byte.
func (s DLSettings) MarshalBinary() ([]byte, error) {
	if s.RX1DROffset > 7 {
		return nil, fmt.Errorf("devmac: RX1DROffset must be <= 7, got %d", s.RX1DROffset)
	}
	if s.RX2DataRate > 15 {
		return nil, fmt.Errorf("devmac: RX2DataRate must be <= 15, got %d", s.RX2DataRate)
	}
	var b byte
	if s.OptNeg {
		b |= 1 << 7
	}
	b |= (s.RX1DROffset & 0x07) << 4
	b |= s.RX2DataRate & 0x0f
	return []byte{b}, nil
}

// UnmarshalBinary decodes DLSettings.
func (s *DLSettings) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("DLSettings", 1)
	}
	s.OptNeg = data[0]&(1<<7) != 0
	s.RX1DROffset = (data[0] >> 4) & 0x07
	s.RX2DataRate = data[0] & 0x0f
	return nil
}

// CFList is the optional 16-byte channel-frequency list appended to a
// join-accept on a dynamic-channel-plan region. Its interpretation (a
// list of five extra 24-bit frequencies, or a fixed-plan channel mask)
// is region-specific and is resolved by the mac package's applyCFList,
// not here.
type CFList [16]byte

// JoinAcceptPayload is the MACPayload of a JoinAccept frame.
type JoinAcceptPayload struct {
	JoinNonce  JoinNonce
	NetID      NetID
	DevAddr    DevAddr
	DLSettings DLSettings
	RxDelay    uint8 // wire value; 0 means 1 second per §4.2
	CFList     *CFList
}

// EffectiveRxDelay returns the RX1 delay in seconds, coercing a wire
// value of 0 to 1 as the LoRaWAN spec permits.
func (p JoinAcceptPayload) EffectiveRxDelay() uint8 {
	if p.RxDelay == 0 {
		return 1
	}
	return p.RxDelay
}

// MarshalBinary encodes the join-accept payload. The MIC is appended by
// the PHYPayload codec, not here; the result is 12 bytes without a
// CFList and 28 with one (17 and 33 once MHDR and MIC are added).
func (p JoinAcceptPayload) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, 33)
	jn := make([]byte, 3)
	jn[0], jn[1], jn[2] = byte(p.JoinNonce), byte(p.JoinNonce>>8), byte(p.JoinNonce>>16)
	b = append(b, jn...)

	nid, err := p.NetID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, nid...)

	addr, err := p.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, addr...)

	dl, err := p.DLSettings.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, dl...)
	b = append(b, p.RxDelay)

	if p.CFList != nil {
		b = append(b, p.CFList[:]...)
	}
	return b, nil
}

// UnmarshalBinary decodes a join-accept payload. data must already
// exclude MHDR and MIC; CFList presence is detected from its residual
// length (12 bytes without, 28 with).
func (p *JoinAcceptPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 12 && len(data) != 28 {
		return fmt.Errorf("devmac: JoinAcceptPayload must be 12 or 28 bytes (got %d)", len(data))
	}

	p.JoinNonce = JoinNonce(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16)
	if err := p.NetID.UnmarshalBinary(data[3:6]); err != nil {
		return err
	}
	if err := p.DevAddr.UnmarshalBinary(data[6:10]); err != nil {
		return err
	}
	if err := p.DLSettings.UnmarshalBinary(data[10:11]); err != nil {
		return err
	}
	p.RxDelay = data[11]

	if len(data) == 28 {
		var cf CFList
		copy(cf[:], data[12:28])
		p.CFList = &cf
	} else {
		p.CFList = nil
	}
	return nil
}
